package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/policy"
)

func (root *Root) queryFields(userType, productType, invoiceType, invoiceSummaryType *graphql.Object) graphql.Fields {
	return graphql.Fields{
		// Products are publicly readable, on both API surfaces.
		"allProducts": &graphql.Field{
			Type: graphql.NewList(productType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				var products []models.Product
				if err := root.DB.Order("id").Find(&products).Error; err != nil {
					return nil, err
				}
				return products, nil
			},
		},
		"allInvoices": &graphql.Field{
			Type: graphql.NewList(invoiceType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				principal, err := root.Resolver.FromContext(p.Context)
				if err != nil {
					return nil, err
				}
				var invoices []models.Invoice
				if err := root.DB.Scopes(policy.InvoiceScope(principal)).
					Preload("Items").
					Order("invoices.id").
					Find(&invoices).Error; err != nil {
					return nil, err
				}
				return invoices, nil
			},
		},
		"allUsers": &graphql.Field{
			Type:    graphql.NewList(userType),
			Resolve: root.staffResolver(func() (any, error) {
				var users []models.User
				if err := root.DB.Order("id").Find(&users).Error; err != nil {
					return nil, err
				}
				return users, nil
			}),
		},
		"productsInInvoices": &graphql.Field{
			Type:    graphql.NewList(productType),
			Resolve: root.authResolver(func() (any, error) { return root.Reports.ProductsInUse() }),
		},
		"productsNotInInvoices": &graphql.Field{
			Type:    graphql.NewList(productType),
			Resolve: root.authResolver(func() (any, error) { return root.Reports.ProductsUnused() }),
		},
		"productsByUserInvoices": &graphql.Field{
			Type: graphql.NewList(productType),
			Args: graphql.FieldConfigArgument{
				"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				principal, err := root.Resolver.FromContext(p.Context)
				if err != nil {
					return nil, err
				}
				if err := policy.RequireStaff(principal); err != nil {
					return nil, err
				}
				userID, _ := p.Args["userId"].(int)
				return root.Reports.ProductsByUserInvoices(uint(userID))
			},
		},
		"usersWithPaidInvoices": &graphql.Field{
			Type:    graphql.NewList(userType),
			Resolve: root.staffResolver(func() (any, error) { return root.Reports.UsersWithPaidInvoices() }),
		},
		"usersWithInvoices": &graphql.Field{
			Type:    graphql.NewList(userType),
			Resolve: root.staffResolver(func() (any, error) { return root.Reports.UsersWithInvoices() }),
		},
		"usersWithClientProfile": &graphql.Field{
			Type:    graphql.NewList(userType),
			Resolve: root.staffResolver(func() (any, error) { return root.Reports.UsersWithClientProfile() }),
		},
		// Public, like the REST popular-products endpoint.
		"popularProducts": &graphql.Field{
			Type: graphql.NewList(productType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				usages, err := root.Reports.PopularProducts()
				if err != nil {
					return nil, err
				}
				products := make([]models.Product, 0, len(usages))
				for _, u := range usages {
					products = append(products, u.Product)
				}
				return products, nil
			},
		},
		"invoiceBasicInfo": &graphql.Field{
			Type:    graphql.NewList(invoiceSummaryType),
			Resolve: root.staffResolver(func() (any, error) { return root.Reports.InvoiceBasicInfo() }),
		},
		"viewer": &graphql.Field{
			Type: userType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				principal, err := root.Resolver.FromContext(p.Context)
				if err != nil {
					return nil, err
				}
				var user models.User
				if err := root.DB.First(&user, principal.UserID).Error; err != nil {
					return nil, err
				}
				return user, nil
			},
		},
	}
}

// authResolver wraps a resolver that only requires an authenticated caller.
func (root *Root) authResolver(fn func() (any, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		if _, err := root.Resolver.FromContext(p.Context); err != nil {
			return nil, err
		}
		return fn()
	}
}

// staffResolver wraps a resolver that requires a staff caller.
func (root *Root) staffResolver(fn func() (any, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		principal, err := root.Resolver.FromContext(p.Context)
		if err != nil {
			return nil, err
		}
		if err := policy.RequireStaff(principal); err != nil {
			return nil, err
		}
		return fn()
	}
}
