package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/validation"
)

func (root *Root) mutationFields(productType *graphql.Object) graphql.Fields {
	tokenPairType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TokenPair",
		Fields: graphql.Fields{
			"token":        &graphql.Field{Type: graphql.String},
			"refreshToken": &graphql.Field{Type: graphql.String},
		},
	})
	tokenPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TokenPayload",
		Fields: graphql.Fields{
			"userId": &graphql.Field{Type: graphql.Int},
			"kind":   &graphql.Field{Type: graphql.String},
		},
	})

	return graphql.Fields{
		"tokenAuth": &graphql.Field{
			Type: tokenPairType,
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				username, _ := p.Args["username"].(string)
				password, _ := p.Args["password"].(string)
				user, err := root.Users.Authenticate(username, password)
				if err != nil {
					return nil, err
				}
				access, refresh, err := root.Tokens.Pair(user.ID)
				if err != nil {
					return nil, err
				}
				return map[string]any{"token": access, "refreshToken": refresh}, nil
			},
		},
		"verifyToken": &graphql.Field{
			Type: tokenPayloadType,
			Args: graphql.FieldConfigArgument{
				"token": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				token, _ := p.Args["token"].(string)
				claims, err := root.Tokens.Verify(token)
				if err != nil {
					return nil, err
				}
				return map[string]any{"userId": claims.UserID, "kind": claims.Kind}, nil
			},
		},
		"refreshToken": &graphql.Field{
			Type: tokenPairType,
			Args: graphql.FieldConfigArgument{
				"refreshToken": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				refresh, _ := p.Args["refreshToken"].(string)
				access, err := root.Tokens.Refresh(refresh)
				if err != nil {
					return nil, err
				}
				return map[string]any{"token": access, "refreshToken": refresh}, nil
			},
		},
		"createProduct": &graphql.Field{
			Type: productType,
			Args: graphql.FieldConfigArgument{
				"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"price":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"description": &graphql.ArgumentConfig{Type: graphql.String},
				"category":    &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (any, error) {
				principal, err := root.Resolver.FromContext(p.Context)
				if err != nil {
					return nil, err
				}

				name, _ := p.Args["name"].(string)
				rawPrice, _ := p.Args["price"].(string)
				price, err := decimal.NewFromString(rawPrice)
				if err != nil {
					return nil, validation.NewError(validation.Violations{"price": "invalid_decimal"})
				}

				product := models.Product{
					Name:        name,
					Price:       price,
					Category:    models.CategoryOther,
					CreatedByID: &principal.UserID,
					UpdatedByID: &principal.UserID,
				}
				if desc, ok := p.Args["description"].(string); ok {
					product.Description = desc
				}
				if category, ok := p.Args["category"].(string); ok && category != "" {
					product.Category = models.ProductCategory(category)
				}

				v := make(validation.Violations)
				validation.Required("name", product.Name, v)
				validation.PositiveDecimal("price", product.Price, v)
				if !product.Category.Valid() {
					v["category"] = "invalid_choice"
				}
				if !v.Empty() {
					return nil, validation.NewError(v)
				}

				if err := root.DB.Create(&product).Error; err != nil {
					return nil, err
				}
				return product, nil
			},
		},
	}
}
