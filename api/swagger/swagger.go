package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GyanSort API",
        "description": "Course marketplace backend: accounts, profiles and discussion forums",
        "version": "0.1.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Signup, login, token refresh"},
        {"name": "Profiles", "description": "Student and instructor profiles"},
        {"name": "Forums", "description": "Discussion forums, membership and messages"}
    ],
    "paths": {
        "/students/register/": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/instructors/register/": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an instructor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/students/login/": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/instructors/login/": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate an instructor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/token/refresh/": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate a refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rotated pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/students/profile/": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get student profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Profiles"],
                "summary": "Update student profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/instructors/profile/": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get instructor profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Profiles"],
                "summary": "Update instructor profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forums/": {
            "get": {
                "tags": ["Forums"],
                "summary": "List forums",
                "parameters": [
                    {"name": "mine", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Forums"],
                "summary": "Create forum",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateForumRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not a verified instructor"}
                }
            }
        },
        "/forums/{id}/": {
            "get": {
                "tags": ["Forums"],
                "summary": "Get forum",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Forums"],
                "summary": "Deactivate forum",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deactivated"},
                    "403": {"description": "Caller is not the creator"}
                }
            }
        },
        "/forums/{id}/join/": {
            "post": {
                "tags": ["Forums"],
                "summary": "Join forum",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Joined", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already a member"}
                }
            }
        },
        "/forums/{id}/leave/": {
            "post": {
                "tags": ["Forums"],
                "summary": "Leave forum",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Left"},
                    "400": {"description": "Not a member"}
                }
            }
        },
        "/forums/participants/": {
            "get": {
                "tags": ["Forums"],
                "summary": "List active participants",
                "parameters": [
                    {"name": "forum", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forums/messages/": {
            "get": {
                "tags": ["Forums"],
                "summary": "List messages",
                "parameters": [
                    {"name": "forum", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Forums"],
                "summary": "Post message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMessageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller is not a member"}
                }
            }
        },
        "/forums/attachments/": {
            "get": {
                "tags": ["Forums"],
                "summary": "List attachments for a message",
                "parameters": [
                    {"name": "message", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Forums"],
                "summary": "Attach file to a message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAttachmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unsupported file type"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["fullname", "email", "password"],
            "properties": {
                "fullname": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "required": ["refresh"],
            "properties": {
                "refresh": {"type": "string"}
            }
        },
        "UpdateProfileRequest": {
            "type": "object",
            "properties": {
                "fullname": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "profile_picture": {"type": "string"}
            }
        },
        "CreateForumRequest": {
            "type": "object",
            "required": ["title", "description"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "topic": {"type": "string"}
            }
        },
        "CreateMessageRequest": {
            "type": "object",
            "required": ["forum", "content"],
            "properties": {
                "forum": {"type": "string"},
                "content": {"type": "string"}
            }
        },
        "CreateAttachmentRequest": {
            "type": "object",
            "required": ["forum", "message", "file_name", "file_type", "file_url"],
            "properties": {
                "forum": {"type": "string"},
                "message": {"type": "string"},
                "file_name": {"type": "string"},
                "file_type": {"type": "string"},
                "file_url": {"type": "string"},
                "file_size": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
