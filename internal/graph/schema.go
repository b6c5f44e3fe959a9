// Package graph exposes the query API surface. Every resolver goes through
// the same policy, reports and services code as the REST handlers, so the two
// surfaces cannot drift apart on access rules or aggregation semantics.
package graph

import (
	"errors"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-manager/internal/auth"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/reports"
	"github.com/diewo77/invoice-manager/internal/services"
)

// Root bundles the collaborators the resolvers need.
type Root struct {
	DB       *gorm.DB
	Reports  *reports.Service
	Users    *services.UserService
	Tokens   *auth.TokenManager
	Resolver *policy.Resolver
}

// NewSchema builds the executable schema.
func NewSchema(root *Root) (graphql.Schema, error) {
	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.Int},
			"username": &graphql.Field{Type: graphql.String},
			"email":    &graphql.Field{Type: graphql.String},
			"isStaff": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(models.User).IsStaff, nil
				},
			},
		},
	})

	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.Int},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"image":       &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(models.Product).Category), nil
				},
			},
			// Decimal values travel as strings to keep fixed-point
			// precision on the wire.
			"price": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(models.Product).Price.StringFixed(2), nil
				},
			},
		},
	})

	invoiceItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "InvoiceItem",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.Int},
			"productId": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(models.InvoiceItem).ProductID, nil
				},
			},
			"quantity": &graphql.Field{Type: graphql.Int},
			"price": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(models.InvoiceItem).Price.StringFixed(2), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					item := p.Source.(models.InvoiceItem)
					var product models.Product
					if err := root.DB.First(&product, item.ProductID).Error; err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							return nil, nil
						}
						return nil, err
					}
					return product, nil
				},
			},
		},
	})

	invoiceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Invoice",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.Int},
			"userId": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(models.Invoice).UserID, nil
				},
			},
			"date":   &graphql.Field{Type: graphql.DateTime},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(models.Invoice).Status), nil
				},
			},
			"items": &graphql.Field{
				Type: graphql.NewList(invoiceItemType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					inv := p.Source.(models.Invoice)
					if inv.Items != nil {
						return inv.Items, nil
					}
					var items []models.InvoiceItem
					if err := root.DB.Where("invoice_id = ?", inv.ID).Order("id").Find(&items).Error; err != nil {
						return nil, err
					}
					return items, nil
				},
			},
			// Derived, never stored; null when the invoice has no items.
			"totalValue": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					total, err := root.Reports.InvoiceTotal(p.Source.(models.Invoice).ID)
					if err != nil {
						return nil, err
					}
					if !total.Valid {
						return nil, nil
					}
					return total.Decimal.StringFixed(2), nil
				},
			},
		},
	})

	invoiceSummaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "InvoiceSummary",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"date": &graphql.Field{Type: graphql.DateTime},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(reports.InvoiceSummary).Status), nil
				},
			},
			"totalItems": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(reports.InvoiceSummary).TotalItems, nil
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: root.queryFields(userType, productType, invoiceType, invoiceSummaryType),
	})
	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: root.mutationFields(productType),
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}
