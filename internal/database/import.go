package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/davinci-dev/davinci/internal/model"
)

// ReadSeedFile reads seed data from various sources:
// 1. Local file paths (*.json files) - a JSON array of snapshots
// 2. Direct HTTP URLs to seed files - a JSON array of snapshots
// 3. Davinci API URLs ending in /v0/snapshots (paginates and fetches each document)
// Invalid snapshots are skipped with a warning.
func ReadSeedFile(ctx context.Context, path string) ([]*model.Snapshot, error) {
	var snapshots []*model.Snapshot

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if strings.HasSuffix(strings.TrimSuffix(path, "/"), "/v0/snapshots") {
			fetched, err := fetchFromAPI(ctx, strings.TrimSuffix(path, "/"))
			if err != nil {
				return nil, fmt.Errorf("failed to read seed data from %s: %w", path, err)
			}
			return validSnapshots(fetched), nil
		}
		data, err := fetchFromHTTP(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed data from %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &snapshots); err != nil {
			return nil, fmt.Errorf("failed to parse seed data: %w", err)
		}
		return validSnapshots(snapshots), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed data from %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return validSnapshots(snapshots), nil
}

func validSnapshots(snapshots []*model.Snapshot) []*model.Snapshot {
	valid := []*model.Snapshot{}
	var invalid []string

	for i, s := range snapshots {
		if err := validateSeedSnapshot(s); err != nil {
			invalid = append(invalid, fmt.Sprintf("#%d", i+1))
			log.Printf("Warning: Skipping invalid snapshot #%d: %v", i+1, err)
			continue
		}
		valid = append(valid, s)
	}

	if len(invalid) > 0 {
		log.Printf("Import summary: %d valid snapshots imported, %d invalid snapshots skipped", len(valid), len(invalid))
	} else {
		log.Printf("Import summary: All %d snapshots imported successfully", len(valid))
	}
	return valid
}

func validateSeedSnapshot(s *model.Snapshot) error {
	if s == nil {
		return fmt.Errorf("%w: empty entry", ErrInvalidInput)
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("%w: invalid id %q", ErrInvalidInput, s.ID)
	}
	if !semver.IsValid("v" + s.Version) {
		return fmt.Errorf("%w: invalid version %q", ErrInvalidInput, s.Version)
	}
	if len(s.Document) == 0 || !json.Valid(s.Document) {
		return fmt.Errorf("%w: missing or malformed document", ErrInvalidInput)
	}
	return nil
}

// markLatest deduplicates snapshots by ID, keeping the last occurrence, and flags
// the one with the highest version as latest.
func markLatest(snapshots []*model.Snapshot) []*model.Snapshot {
	index := make(map[string]int, len(snapshots))
	var unique []*model.Snapshot
	for _, s := range snapshots {
		if i, ok := index[s.ID]; ok {
			unique[i] = s
			continue
		}
		index[s.ID] = len(unique)
		unique = append(unique, s)
	}

	var latest *model.Snapshot
	for _, s := range unique {
		s.IsLatest = false
		if latest == nil || semver.Compare("v"+s.Version, "v"+latest.Version) > 0 {
			latest = s
		}
	}
	if latest != nil {
		latest.IsLatest = true
	}
	return unique
}

func fetchFromHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from HTTP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func fetchFromAPI(ctx context.Context, baseURL string) ([]*model.Snapshot, error) {
	var all []*model.Snapshot
	cursor := ""

	for {
		pageURL := baseURL
		if cursor != "" {
			pageURL += "?cursor=" + url.QueryEscape(cursor)
		}

		data, err := fetchFromHTTP(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page from API: %w", err)
		}

		var page model.SnapshotList
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("failed to parse API response: %w", err)
		}

		for _, summary := range page.Snapshots {
			data, err := fetchFromHTTP(ctx, baseURL+"/"+url.PathEscape(summary.ID))
			if err != nil {
				return nil, fmt.Errorf("failed to fetch snapshot %s: %w", summary.ID, err)
			}
			var s model.Snapshot
			if err := json.Unmarshal(data, &s); err != nil {
				return nil, fmt.Errorf("failed to parse snapshot %s: %w", summary.ID, err)
			}
			all = append(all, &s)
		}

		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	return all, nil
}
