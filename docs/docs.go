// Package docs registers the OpenAPI description served at /swagger. The
// document is maintained by hand and lists the routes whose handlers carry
// @Router annotations in package gateway.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "Name filter", "name": "keyword", "in": "query"},
                    {"type": "integer", "description": "Page, starting at 1", "name": "pageNumber", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.ProductPage"}}
                }
            }
        },
        "/api/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [
                    {"type": "string", "description": "Product id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/message"}}
                }
            }
        },
        "/api/users/auth": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Sign in and receive the session cookie",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/message"}}
                }
            }
        },
        "/api/orders": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order",
                "parameters": [
                    {"description": "Items, address and payment method", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.CreateOrderInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/message"}}
                }
            }
        },
        "/api/orders/{id}/pay": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Mark an order paid after checking the provider transaction",
                "parameters": [
                    {"type": "string", "description": "Order id", "name": "id", "in": "path", "required": true},
                    {"description": "Provider capture details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.PaymentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/message"}}
                }
            }
        }
    },
    "definitions": {
        "message": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"},
                "image": {"type": "string"},
                "brand": {"type": "string"},
                "category": {"type": "string"},
                "description": {"type": "string"},
                "rating": {"type": "number"},
                "numReviews": {"type": "integer"},
                "price": {"type": "number"},
                "countInStock": {"type": "integer"}
            }
        },
        "models.Order": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "user": {"type": "string"},
                "paymentMethod": {"type": "string"},
                "itemsPrice": {"type": "string"},
                "shippingPrice": {"type": "string"},
                "taxPrice": {"type": "string"},
                "totalPrice": {"type": "string"},
                "isPaid": {"type": "boolean"},
                "isDelivered": {"type": "boolean"}
            }
        },
        "service.ProductPage": {
            "type": "object",
            "properties": {
                "products": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}},
                "page": {"type": "integer"},
                "pages": {"type": "integer"}
            }
        },
        "service.LoginInput": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "service.CreateOrderInput": {
            "type": "object",
            "required": ["shippingAddress", "paymentMethod"],
            "properties": {
                "orderItems": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"product": {"type": "string"}, "qty": {"type": "integer"}}
                    }
                },
                "shippingAddress": {
                    "type": "object",
                    "properties": {
                        "address": {"type": "string"},
                        "city": {"type": "string"},
                        "postalCode": {"type": "string"},
                        "country": {"type": "string"}
                    }
                },
                "paymentMethod": {"type": "string"}
            }
        },
        "service.PaymentInput": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "update_time": {"type": "string"},
                "payer": {"type": "object", "properties": {"email_address": {"type": "string"}}}
            }
        }
    }
}`

// SwaggerInfo is registered with swag under the default instance name.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Catalog, cart, orders and payments for the storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
