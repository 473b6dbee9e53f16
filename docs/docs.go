// Package docs holds the Swagger description served at /docs/.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/health": {
            "get": {
                "description": "Reports uptime and, best-effort, whether the hosting API answers.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/v1/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Feeds one command, button press, text message or base64 file into the caller's conversation and returns the bot reply.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Send a chat event",
                "parameters": [
                    {"description": "Chat event", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "400": {"description": "Invalid event", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/v1/events/file": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Multipart variant of the file event, for files too large to base64 comfortably.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Events"],
                "summary": "Send a file to the conversation",
                "parameters": [
                    {"type": "file", "description": "File to stage or deploy", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "400": {"description": "Invalid file upload form", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/v1/deployments": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's active deployments, newest first.",
                "produces": ["application/json"],
                "tags": ["Deployments"],
                "summary": "List my deployments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "500": {"description": "Failed to load deployments", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        },
        "/api/v1/deployments/{slug}/artifacts/{index}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a temporary signed URL to download one archived file (by index) of a deployment. Owners and admins only.",
                "produces": ["application/json"],
                "tags": ["Deployments"],
                "summary": "Generate a presigned download URL for a deployed file",
                "parameters": [
                    {"type": "string", "description": "Deployment slug", "name": "slug", "in": "path", "required": true},
                    {"type": "integer", "description": "File index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Presigned download URL generated successfully", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "400": {"description": "Missing or invalid parameters", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "404": {"description": "Deployment or file not found", "schema": {"$ref": "#/definitions/utils.Payload"}},
                    "503": {"description": "Archiving is disabled", "schema": {"$ref": "#/definitions/utils.Payload"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.EventFile": {
            "type": "object",
            "properties": {
                "content": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "handlers.EventRequest": {
            "type": "object",
            "properties": {
                "callback": {"type": "string"},
                "command": {"type": "string"},
                "file": {"$ref": "#/definitions/handlers.EventFile"},
                "text": {"type": "string"}
            }
        },
        "utils.Payload": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "SiteDrop API",
	Description:      "HTTP surface of the SiteDrop deploy bot.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
