package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coaching Admin API",
        "description": "Student fee ledger, bulk spreadsheet import and center administration",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Students", "description": "Student roster and profiles"},
        {"name": "Ledger", "description": "Fee collection and retraction"},
        {"name": "Import", "description": "Bulk spreadsheet import"},
        {"name": "Courses", "description": "Course fee configuration"},
        {"name": "Stats", "description": "Aggregate dashboard figures"},
        {"name": "Exports", "description": "Reports and certificates"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}}
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a user",
                "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with filters and pagination",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a new student",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Registration taken"}}
            }
        },
        "/api/v1/students/{registration}": {
            "get": {
                "tags": ["Students"],
                "summary": "Student detail with fee ledger and arrears",
                "responses": {"200": {"$ref": "#/responses/Envelope"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student profile",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            },
            "delete": {
                "tags": ["Ledger"],
                "summary": "Delete a student and their ledger",
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/api/v1/students/{registration}/installments": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Record a fee payment",
                "responses": {"201": {"description": "Recorded"}, "404": {"description": "Student not found"}}
            },
            "delete": {
                "tags": ["Ledger"],
                "summary": "Retract a recorded payment",
                "responses": {"204": {"description": "Retracted"}}
            }
        },
        "/api/v1/students/{registration}/rekey": {
            "post": {
                "tags": ["Ledger"],
                "summary": "Move a student to a new registration number",
                "responses": {"204": {"description": "Moved"}, "409": {"description": "Registration taken"}}
            }
        },
        "/api/v1/students/{registration}/photo": {
            "post": {
                "tags": ["Students"],
                "summary": "Upload a student portrait",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/students/{registration}/certificate": {
            "post": {
                "tags": ["Exports"],
                "summary": "Issue a completion certificate",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/imports/{format}": {
            "post": {
                "tags": ["Import"],
                "summary": "Import a center spreadsheet export (nariyawal or thiriya)",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List configured courses",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/courses/{name}": {
            "put": {
                "tags": ["Courses"],
                "summary": "Configure a course fee",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/courses/standardize": {
            "post": {
                "tags": ["Courses"],
                "summary": "Align student totals with the canonical course fees",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/stats": {
            "get": {
                "tags": ["Stats"],
                "summary": "Aggregate enrollment and fee statistics",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/stats/sync": {
            "post": {
                "tags": ["Stats"],
                "summary": "Recompute aggregate statistics now",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/exports/{kind}": {
            "post": {
                "tags": ["Exports"],
                "summary": "Generate a roster, arrears or ledger export",
                "responses": {"200": {"$ref": "#/responses/Envelope"}}
            }
        },
        "/api/v1/downloads/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a generated export by signed token",
                "responses": {"200": {"description": "File stream"}, "401": {"description": "Invalid token"}}
            }
        }
    },
    "responses": {
        "Envelope": {"description": "Standard response envelope"}
    },
    "definitions": {
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
