package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Noticeboard API",
        "description": "Digital noticeboard with staff publishing, admin approval and a public realtime feed",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Feed", "description": "Public read-only board"},
        {"name": "Authentication", "description": "Staff signup, login and tokens"},
        {"name": "Notices", "description": "Staff dashboard notice management"},
        {"name": "Admin", "description": "Account approval panel"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/feed": {
            "get": {
                "tags": ["Feed"],
                "summary": "Public notice feed",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/feed/stream": {
            "get": {
                "tags": ["Feed"],
                "summary": "Feed change stream (server-sent events)",
                "parameters": [
                    {"name": "Last-Event-ID", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/api/v1/auth/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a staff account (starts pending)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user with live approval status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notices": {
            "get": {
                "tags": ["Notices"],
                "summary": "List notices for the dashboard",
                "parameters": [
                    {"name": "archived", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Notices"],
                "summary": "Create notice",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NoticeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notices/stats": {
            "get": {
                "tags": ["Notices"],
                "summary": "Dashboard counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notices/attachments": {
            "post": {
                "tags": ["Notices"],
                "summary": "Upload attachments",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "files", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notices/export.pdf": {
            "get": {
                "tags": ["Notices"],
                "summary": "Printable board PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/api/v1/notices/export.csv": {
            "get": {
                "tags": ["Notices"],
                "summary": "Notices CSV export",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/api/v1/notices/{id}": {
            "get": {
                "tags": ["Notices"],
                "summary": "Get notice",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Notices"],
                "summary": "Update notice (optional version check)",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/NoticeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Version conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Notices"],
                "summary": "Delete notice permanently",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/notices/{id}/archive": {
            "post": {
                "tags": ["Notices"],
                "summary": "Archive or restore notice",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ArchiveRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/api/v1/admin/users": {
            "get": {
                "tags": ["Admin"],
                "summary": "List accounts with status counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/users/{id}/status": {
            "put": {
                "tags": ["Admin"],
                "summary": "Approve or reject an account",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"}
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
        "NoticeRequest": {
            "type": "object",
            "required": ["title", "content"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "category": {"type": "string", "enum": ["academic", "exams", "placements", "cultural", "sports", "circulars"]},
                "priority": {"type": "string", "enum": ["urgent", "important", "general"]},
                "content_type": {"type": "string", "enum": ["text", "pdf", "image", "link", "video"]},
                "attachment_urls": {"type": "array", "items": {"type": "string"}},
                "link_url": {"type": "string"},
                "department": {"type": "string"},
                "year": {"type": "string"},
                "target_audience": {"type": "array", "items": {"type": "string"}},
                "is_published": {"type": "boolean"},
                "scheduled_publish_date": {"type": "string", "format": "date-time"},
                "version": {"type": "integer"}
            }
        },
        "ArchiveRequest": {
            "type": "object",
            "required": ["archived"],
            "properties": {
                "archived": {"type": "boolean"}
            }
        },
        "StatusRequest": {
            "type": "object",
            "required": ["account_status"],
            "properties": {
                "account_status": {"type": "string", "enum": ["pending", "approved", "rejected"]}
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
