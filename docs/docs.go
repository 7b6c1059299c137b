// Package docs описание API для swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "SessionToken": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/api/sync": {
            "post": {
                "security": [{"SessionToken": []}],
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Синхронизация каталога",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SyncResult"}},
                    "402": {"description": "Payment Required", "schema": {"$ref": "#/definitions/SyncResult"}}
                }
            }
        },
        "/api/apikey": {
            "get": {
                "produces": ["application/json"],
                "tags": ["apikey"],
                "summary": "Ключ API магазина",
                "parameters": [
                    {"type": "string", "description": "Домен магазина", "name": "shop_domain", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIKey"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "put": {
                "security": [{"SessionToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["apikey"],
                "summary": "Сохранение ключа API",
                "parameters": [
                    {"description": "Ключ", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/APIKey"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/webhooks/billing": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["webhooks"],
                "summary": "Биллинговый вебхук",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        }
    },
    "definitions": {
        "SyncResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "shopDomain": {"type": "string"},
                "productCount": {"type": "integer"},
                "skippedProducts": {"type": "integer"},
                "apiResult": {"type": "object"},
                "details": {"type": "object"},
                "errorKind": {"type": "string"}
            }
        },
        "APIKey": {
            "type": "object",
            "properties": {"apiKey": {"type": "string"}}
        },
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    }
}`

// SwaggerInfo метаданные документа
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Catalog Sync API",
	Description:      "Синхронизация каталога магазина с внешним сервисом приема данных",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
