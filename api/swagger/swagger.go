package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Teaching Tools API",
        "description": "File-sharing and permission backend for the Teaching Tools dashboard",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Sharing", "description": "File sharing and permission resolution"},
        {"name": "Maintenance", "description": "Admin housekeeping"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/files/{id}/permission": {
            "get": {
                "tags": ["Sharing"],
                "summary": "Resolve the caller's effective permission on a file",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{id}/permissions": {
            "get": {
                "tags": ["Sharing"],
                "summary": "List all grants on a file",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{id}/permissions/export": {
            "get": {
                "tags": ["Sharing"],
                "summary": "Export the grant list for a file",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "default": "csv", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Export payload"},
                    "403": {"description": "Caller cannot manage permissions on this file"}
                }
            }
        },
        "/files/{id}/share": {
            "post": {
                "tags": ["Sharing"],
                "summary": "Share a file with a user, class or role",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ShareFileRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Caller cannot share this file"}
                }
            }
        },
        "/permissions/{id}": {
            "delete": {
                "tags": ["Sharing"],
                "summary": "Remove a sharing grant",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Caller cannot remove this grant"},
                    "404": {"description": "Grant not found"}
                }
            }
        },
        "/shared-with-me": {
            "get": {
                "tags": ["Sharing"],
                "summary": "List files shared directly with the caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/available": {
            "get": {
                "tags": ["Sharing"],
                "summary": "List classes the caller can share into",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/maintenance/purge-expired": {
            "post": {
                "tags": ["Maintenance"],
                "summary": "Delete expired sharing grants now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin role required"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ShareFileRequest": {
            "type": "object",
            "properties": {
                "permission_level": {"type": "string", "enum": ["view", "edit", "contribute", "owner"]},
                "share_scope": {"type": "string", "enum": ["private", "class", "school", "public"]},
                "shared_with_type": {"type": "string", "enum": ["user", "class", "role"]},
                "shared_with_id": {"type": "string"},
                "role": {"type": "string", "enum": ["teacher", "student", "admin"]},
                "expires_at": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["permission_level", "share_scope", "shared_with_type"]
        },
        "PermissionGrant": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "file_id": {"type": "string"},
                "permission_level": {"type": "string"},
                "share_scope": {"type": "string"},
                "user_id": {"type": "string"},
                "class_id": {"type": "string"},
                "role": {"type": "string"},
                "granted_by": {"type": "string"},
                "granted_at": {"type": "string"},
                "expires_at": {"type": "string"}
            }
        },
        "EffectivePermission": {
            "type": "object",
            "properties": {
                "file_id": {"type": "string"},
                "permission_level": {"type": "string"},
                "capabilities": {
                    "type": "array",
                    "items": {"type": "string"}
                }
            }
        },
        "ClassContext": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "student_count": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
