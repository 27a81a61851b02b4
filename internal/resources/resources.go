// Package resources declares the API resources served by davinci and registers
// their schema metadata.
package resources

import (
	"time"

	"github.com/davinci-dev/davinci/internal/model"
	"github.com/davinci-dev/davinci/pkg/openapi"
	"github.com/davinci-dev/davinci/pkg/reflector"
)

// Customer is a registered customer
type Customer struct {
	ID        string          `json:"id" openapi:"required,description=Unique customer identifier"`
	Firstname string          `json:"firstname" openapi:"required"`
	Lastname  string          `json:"lastname" openapi:""`
	Email     string          `json:"email" openapi:"description=Contact email address"`
	Groups    []string        `json:"groups" openapi:""`
	Phone     []CustomerPhone `json:"phone" openapi:""`
	Address   *Address        `json:"address" openapi:"description=Billing address"`
	CreatedAt time.Time       `json:"createdAt" openapi:""`
}

// CustomerPhone is a phone number of a customer
type CustomerPhone struct {
	Number    string `json:"number" openapi:"required"`
	IsPrimary bool   `json:"isPrimary" openapi:""`
}

// Address has no definition of its own and is inlined wherever it is used.
type Address struct {
	Street  string `json:"street" openapi:"required"`
	City    string `json:"city" openapi:"required"`
	Zip     string `json:"zip" openapi:""`
	Country string `json:"country" openapi:""`
}

// Order is a customer order
type Order struct {
	ID       string            `json:"id"`
	Customer *Customer         `json:"customer"`
	Lines    []OrderLine       `json:"lines"`
	Total    float64           `json:"total"`
	Status   string            `json:"status"`
	PlacedAt time.Time         `json:"placedAt"`
	Shipping *Address          `json:"shipping"`
	Metadata map[string]string `json:"metadata"`
}

// OrderLine is a single line of an order
type OrderLine struct {
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Category is a node of the product category tree
type Category struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Parent   *Category   `json:"parent,omitempty"`
	Children []*Category `json:"children,omitempty"`
}

// OrderStatuses are the accepted values of Order.Status
var OrderStatuses = []any{"pending", "paid", "shipped", "cancelled"}

// Register records the schema metadata of every resource type into store and
// returns the resources in catalog order.
func Register(store *reflector.Store) []model.Resource {
	openapi.Register[CustomerPhone](store,
		openapi.WithDefinition(openapi.DefinitionOptions{Title: "CustomerPhone"}),
		openapi.WithTaggedProps(),
	)
	openapi.Register[Address](store, openapi.WithTaggedProps())
	openapi.Register[Customer](store,
		openapi.WithDefinition(openapi.DefinitionOptions{
			Title:       "Customer",
			Description: "A registered customer",
		}),
		openapi.WithTaggedProps(),
	)

	openapi.Register[OrderLine](store,
		openapi.WithDefinition(openapi.DefinitionOptions{Title: "OrderLine"}),
		openapi.WithProp("sku", openapi.PropOptions{Type: openapi.String, Required: true}),
		openapi.WithProp("quantity", openapi.PropOptions{Type: openapi.Number, Required: true}),
		openapi.WithProp("unitPrice", openapi.PropOptions{Type: openapi.Number}),
	)
	openapi.Register[Order](store,
		openapi.WithDefinition(openapi.DefinitionOptions{
			Title:      "Order",
			Extensions: map[string]any{"x-resource": "orders"},
		}),
		openapi.WithProp("id", openapi.PropOptions{Required: true}),
		openapi.WithProp("customer", openapi.PropOptions{
			TypeFactory: func() openapi.Type { return openapi.ClassOf[Customer]() },
			Required:    true,
		}),
		openapi.WithProp("lines", openapi.PropOptions{Type: openapi.ArrayOf(openapi.ClassOf[OrderLine]())}),
		openapi.WithProp("total", openapi.PropOptions{}),
		openapi.WithProp("status", openapi.PropOptions{
			RawType: &openapi.Schema{Type: "string", Enum: OrderStatuses},
		}),
		openapi.WithProp("placedAt", openapi.PropOptions{}),
		openapi.WithProp("shipping", openapi.PropOptions{Description: "Shipping address"}),
		openapi.WithProp("metadata", openapi.PropOptions{}),
	)

	openapi.Register[Category](store,
		openapi.WithDefinition(openapi.DefinitionOptions{Title: "Category"}),
		openapi.WithProp("id", openapi.PropOptions{Type: openapi.String, Required: true}),
		openapi.WithProp("name", openapi.PropOptions{Type: openapi.String, Required: true}),
		openapi.WithProp("parent", openapi.PropOptions{
			TypeFactory: func() openapi.Type { return openapi.ClassOf[Category]() },
		}),
		openapi.WithProp("children", openapi.PropOptions{
			TypeFactory: func() openapi.Type { return openapi.ArrayOf(openapi.ClassOf[Category]()) },
		}),
	)

	return []model.Resource{
		{
			Name:        "customers",
			BasePath:    "/customers",
			Description: "Customers and their contact details",
			Root:        openapi.ClassOf[Customer](),
		},
		{
			Name:        "orders",
			BasePath:    "/orders",
			Description: "Orders placed by customers",
			Root:        openapi.ClassOf[Order](),
		},
		{
			Name:        "categories",
			BasePath:    "/categories",
			Description: "Product category tree",
			Root:        openapi.ClassOf[Category](),
		},
	}
}
