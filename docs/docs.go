// Package docs is generated by swaggo/swag from the handler annotations.
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
        "/api/history": {
            "get": {
                "description": "Day records of the logged-in user, oldest first. Accepts RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; values without an offset are read in the tracker time zone. Bounds are inclusive calendar days.",
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "Activity history",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range. Date-only treated as end of day.", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, history", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/login": {
            "post": {
                "description": "Verifies credentials and starts a session (cookie).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.loginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/save-session": {
            "post": {
                "description": "Adds steps and energy to the lifetime totals and merges them into today's history record.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "Save a workout session",
                "parameters": [
                    {"description": "session totals", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.saveSessionInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/signup": {
            "post": {
                "description": "Registers a user and starts a session (cookie).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Create an account",
                "parameters": [
                    {"description": "account", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.signUpInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/user": {
            "get": {
                "description": "Returns the logged-in user with lifetime totals and history, or null without a session.",
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "WebSocket. Send {\"type\":\"step-pulse\",\"data\":...}; every client receives {\"type\":\"update-ui\",\"data\":...}.",
                "tags": ["live"],
                "summary": "Live step channel",
                "responses": {}
            }
        }
    },
    "definitions": {
        "handlers.loginInput": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handlers.saveSessionInput": {
            "type": "object",
            "required": ["energy", "steps"],
            "properties": {
                "energy": {"type": "number"},
                "steps": {"type": "integer"}
            }
        },
        "handlers.signUpInput": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.DayRecord": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "energy": {"type": "number"},
                "steps": {"type": "integer"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/models.DayRecord"}},
                "id": {"type": "integer"},
                "lifetimeEnergy": {"type": "number"},
                "lifetimeSteps": {"type": "integer"},
                "username": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ReGenX API",
	Description:      "Step tracking backend: accounts, lifetime counters, daily history and a live pulse channel.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
