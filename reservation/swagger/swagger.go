// Package swagger registers the OpenAPI document served under /swagger/.
package swagger

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
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Open a session",
                "parameters": [
                    {"name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Close the current session",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/reservations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reservations"],
                "summary": "List reservations by date or name",
                "parameters": [
                    {"type": "string", "name": "date", "in": "query", "description": "YYYY-MM-DD"},
                    {"type": "string", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ListReservations"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reservations"],
                "summary": "Submit a reservation",
                "parameters": [
                    {"name": "reservation", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ReservationInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Reservation"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            }
        },
        "/reservations/confirm": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reservations"],
                "summary": "Validate a reservation without storing it",
                "parameters": [
                    {"name": "reservation", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ReservationInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ReservationInput"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            }
        },
        "/reservations/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reservations"],
                "summary": "Get a reservation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Reservation"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reservations"],
                "summary": "Amend a reservation",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "reservation", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ReservationInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Reservation"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Error"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            },
            "delete": {
                "tags": ["reservations"],
                "summary": "Remove a reservation",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            }
        },
        "/calendar": {
            "get": {
                "produces": ["application/json"],
                "tags": ["calendar"],
                "summary": "Month grid with reservations per day",
                "parameters": [
                    {"type": "integer", "name": "year", "in": "query"},
                    {"type": "integer", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Calendar"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.Error"}}
                }
            }
        }
    },
    "definitions": {
        "handler.Error": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "reason": {"type": "string"}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "model.LoginResponse": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "token": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "model.ReservationInput": {
            "type": "object",
            "required": ["name", "date", "time"],
            "properties": {
                "name": {"type": "string", "maxLength": 50},
                "date": {"type": "string", "example": "2030-01-01"},
                "time": {"type": "string", "example": "12:00"}
            }
        },
        "model.Reservation": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "menu": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "model.ListReservations": {
            "type": "object",
            "properties": {
                "totalElements": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/model.Reservation"}}
            }
        },
        "model.Calendar": {
            "type": "object",
            "properties": {
                "year": {"type": "integer"},
                "month": {"type": "integer"},
                "weeks": {"type": "array", "items": {"type": "array", "items": {"type": "integer"}}},
                "reservations": {"type": "object"},
                "prev": {"type": "object"},
                "next": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds the exported document metadata.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Reservation API",
	Description:      "Booking of named time slots with validation and conflict checks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
