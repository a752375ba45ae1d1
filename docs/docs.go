// Package docs holds the swagger registration for the MeetHub API.
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
        "/authentication/token": {
            "post": {
                "description": "Exchanges username and password for a JWT pair.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["authentication"],
                "summary": "Login",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/meetings": {
            "get": {
                "description": "Lists meetings ordered by ascending date, optionally filtered by exact status.",
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "List meetings",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "description": "Creates a meeting with status fixed to scheduled. Sellers only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "Create meeting",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/meetings/{meetingID}": {
            "put": {
                "description": "Applies an unrestricted partial update. Managers only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "Update meeting",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "description": "Removes the meeting. Managers only.",
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "Delete meeting",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/meetings/{meetingID}/cancel": {
            "put": {
                "description": "Cancels a scheduled meeting. Sellers only, fails unless the meeting is currently scheduled.",
                "produces": ["application/json"],
                "tags": ["meetings"],
                "summary": "Cancel meeting",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid Transition"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/users": {
            "post": {
                "description": "Creates a seller account. Managers only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create seller",
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/users/sellers": {
            "get": {
                "description": "Lists seller accounts. Managers only.",
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List sellers",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "MeetHub API",
	Description:      "Meeting scheduling API with role-gated access and live updates.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
