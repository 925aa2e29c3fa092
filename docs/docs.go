// Package docs holds the swagger document served at /swagger/*.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/google": {
            "post": {
                "description": "Verifies a Google ID token, links or creates the account and issues a session token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in with Google",
                "parameters": [
                    {"description": "Google credential", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.GoogleLoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the signed-in account including its roadmap. The password hash is never included.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Revokes the presented bearer token.",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MessageResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/ai/deep-consult": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Suggests exactly five career domains with a corrective analysis each.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Career domain consultation",
                "parameters": [
                    {"description": "Career profile", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ConsultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.DomainSuggestion"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/ai/generate-roadmap": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Generates a six-month roadmap and replaces the caller's stored roadmap with it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Generate roadmap",
                "parameters": [
                    {"description": "Target domain", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RoadmapRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Roadmap"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/ai/roadmap": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Current roadmap",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/model.Roadmap"},
                        "headers": {"X-Roadmap-Source": {"type": "string", "description": "store or cache"}}
                    },
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/ai/roadmap/months/{month}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Mark a roadmap month",
                "parameters": [
                    {"type": "integer", "description": "Month number (1-6)", "name": "month", "in": "path", "required": true},
                    {"description": "Completion flag", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.MonthToggleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Roadmap"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {"msg": {"type": "string"}}
        },
        "handler.AuthResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "user": {}}
        },
        "handler.MessageResponse": {
            "type": "object",
            "properties": {"msg": {"type": "string"}}
        },
        "handler.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "password": {"type": "string", "minLength": 6}}
        },
        "handler.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handler.GoogleLoginRequest": {
            "type": "object",
            "required": ["credential"],
            "properties": {"credential": {"type": "string"}}
        },
        "handler.ProfileRequest": {
            "type": "object",
            "required": ["academicStatus", "backlogs", "dreamCompany", "topSkills"],
            "properties": {
                "academicStatus": {"type": "string"},
                "backlogs": {"type": "string"},
                "dreamCompany": {"type": "string"},
                "priority": {"type": "string"},
                "projectType": {"type": "string"},
                "topSkills": {"type": "string"}
            }
        },
        "handler.ConsultRequest": {
            "type": "object",
            "properties": {"profile": {"$ref": "#/definitions/handler.ProfileRequest"}}
        },
        "handler.RoadmapRequest": {
            "type": "object",
            "required": ["domain"],
            "properties": {"currentSkills": {"type": "string"}, "domain": {"type": "string"}}
        },
        "handler.MonthToggleRequest": {
            "type": "object",
            "required": ["isCompleted"],
            "properties": {"isCompleted": {"type": "boolean"}, "revision": {"type": "integer"}}
        },
        "model.DomainSuggestion": {
            "type": "object",
            "properties": {"analysis": {"type": "string"}, "domain": {"type": "string"}}
        },
        "model.MonthPlan": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "goal": {"type": "string"},
                "isCompleted": {"type": "boolean"},
                "month": {"type": "integer"}
            }
        },
        "model.Roadmap": {
            "type": "object",
            "properties": {
                "missingSkills": {"type": "array", "items": {"type": "string"}},
                "revision": {"type": "integer"},
                "roadmap": {"type": "array", "items": {"$ref": "#/definitions/model.MonthPlan"}},
                "targetDomain": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.User": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "googleId": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "profileCompleted": {"type": "boolean"},
                "roadmap": {"$ref": "#/definitions/model.Roadmap"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Career Compass API",
	Description:      "Career guidance API: authentication, AI career consultation and six-month skill roadmaps.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
