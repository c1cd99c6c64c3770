// Package api holds the Swagger document served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs/api
package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/localnerve/jam-build-learnhub",
            "email": "info@localnerve.com"
        },
        "license": {
            "name": "AGPL-3.0",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {"tags": ["Health"], "summary": "Service health", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/databases/{database}/collections/{collection}/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents",
                "parameters": [
                    {"type": "string", "name": "database", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "cursorAfter", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "filter", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.ListResponseStruct"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Create document",
                "parameters": [
                    {"type": "string", "name": "database", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/utils.MutationResponseStruct"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}
            }
        },
        "/databases/{database}/collections/{collection}/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get document",
                "parameters": [
                    {"type": "string", "name": "database", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}
            },
            "patch": {
                "tags": ["Documents"],
                "summary": "Update document",
                "parameters": [
                    {"type": "string", "name": "database", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.MutationResponseStruct"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete document",
                "parameters": [
                    {"type": "string", "name": "database", "in": "path", "required": true},
                    {"type": "string", "name": "collection", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "version", "in": "query"}
                ],
                "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}
            }
        },
        "/storage/buckets/{bucket}/files": {
            "post": {
                "tags": ["Storage"],
                "summary": "Upload a file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"type": "string", "name": "bucket", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {"201": {"description": "Created"}, "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}
            }
        },
        "/storage/buckets/{bucket}/files/{id}": {
            "get": {"tags": ["Storage"], "summary": "Get file metadata", "parameters": [{"type": "string", "name": "bucket", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Storage"], "summary": "Delete a file", "parameters": [{"type": "string", "name": "bucket", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/storage/buckets/{bucket}/files/{id}/view": {
            "get": {"tags": ["Storage"], "summary": "View a file inline", "parameters": [{"type": "string", "name": "bucket", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "token", "in": "query"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/storage/buckets/{bucket}/files/{id}/download": {
            "get": {"tags": ["Storage"], "summary": "Download a file", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "bucket", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "token", "in": "query"}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/storage/buckets/{bucket}/files/{id}/token": {
            "post": {"tags": ["Storage"], "summary": "Issue a file view token", "parameters": [{"type": "string", "name": "bucket", "in": "path", "required": true}, {"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/account": {
            "get": {"tags": ["Account"], "summary": "Get the caller's profile", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}},
            "post": {"tags": ["Account"], "summary": "Create account", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.SignUpInput"}}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponseStruct"}}}}
        },
        "/account/sessions": {
            "post": {"tags": ["Account"], "summary": "Create session", "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "Created"}, "401": {"description": "Unauthorized"}}}
        },
        "/users/{id}/status": {
            "patch": {"tags": ["Account"], "summary": "Change a user's role or active flag", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.StatusInput"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.MutationResponseStruct"}}}}
        }
    },
    "definitions": {
        "services.SignUpInput": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "name": {"type": "string"}, "phone": {"type": "string"}}
        },
        "services.StatusInput": {
            "type": "object",
            "properties": {"role": {"type": "string"}, "active": {"type": "boolean"}}
        },
        "utils.ErrorResponseStruct": {
            "type": "object",
            "properties": {"status": {"type": "integer"}, "message": {"type": "string"}, "ok": {"type": "boolean"}, "timestamp": {"type": "string"}, "url": {"type": "string"}, "type": {"type": "string"}, "versionError": {"type": "boolean"}}
        },
        "utils.ListResponseStruct": {
            "type": "object",
            "properties": {"total": {"type": "integer"}, "documents": {"type": "array", "items": {"type": "object"}}}
        },
        "utils.MutationResponseStruct": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "ok": {"type": "boolean"}, "document": {"type": "object"}, "timestamp": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "CookieAuth": {"type": "apiKey", "name": "cookie_session", "in": "cookie"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "LearnHub API",
	Description:      "Learning content document store, file storage and accounts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
