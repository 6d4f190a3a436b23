package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Seating API",
        "description": "Anti-collusion exam seat allocation and reporting",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Rooms", "description": "Room and seat grid management"},
        {"name": "Seating", "description": "Allocation runs and arrangements"},
        {"name": "Reports", "description": "Arrangement report projections"},
        {"name": "Exports", "description": "Asynchronous report exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "class", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "allocated", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate roll number"}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Remove every student and their assignments",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students/upload": {
            "post": {
                "tags": ["Students"],
                "summary": "Bulk upload students from a workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/template": {
            "get": {
                "tags": ["Students"],
                "summary": "Download the student upload template",
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "XLSX template"}
                }
            }
        },
        "/students/department-subjects": {
            "get": {
                "tags": ["Students"],
                "summary": "List departments and their subjects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Rooms"],
                "summary": "Create room with its seat grid",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate room number"}
                }
            },
            "delete": {
                "tags": ["Rooms"],
                "summary": "Remove every room, seat and assignment",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/rooms/upload": {
            "post": {
                "tags": ["Rooms"],
                "summary": "Bulk upload rooms from a workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/template": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Download the room upload template",
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "XLSX template"}
                }
            }
        },
        "/seating/generate": {
            "post": {
                "tags": ["Seating"],
                "summary": "Run the seating allocation for an exam date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateSeatingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Allocation already running"},
                    "422": {"description": "Fewer than two populated subjects or no rooms"}
                }
            }
        },
        "/seating/dates": {
            "get": {
                "tags": ["Seating"],
                "summary": "List exam dates that have arrangements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/counts": {
            "get": {
                "tags": ["Seating"],
                "summary": "Roster and arrangement row counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/seating/{date}": {
            "delete": {
                "tags": ["Seating"],
                "summary": "Delete the arrangement for an exam date",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "No arrangement for date"}
                }
            }
        },
        "/reports/consolidated/{date}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Consolidated seat-range report per room and department",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No arrangement for date"}
                }
            }
        },
        "/reports/room/{date}/{roomNo}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Per-room seating chart split by seat column",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "roomNo", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No arrangement for date and room"}
                }
            }
        },
        "/reports/supervisor/{date}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Supervisor sign-off sheets grouped by room and subject",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No arrangement for date"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a report export job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Export file"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "rollNo": {"type": "string"},
                "fullName": {"type": "string"},
                "department": {"type": "string"},
                "className": {"type": "string"},
                "subjects": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["rollNo", "fullName", "department", "className", "subjects"]
        },
        "CreateRoomRequest": {
            "type": "object",
            "properties": {
                "roomNo": {"type": "string"},
                "totalBenches": {"type": "integer"},
                "rightCount": {"type": "integer"},
                "middleCount": {"type": "integer"},
                "leftCount": {"type": "integer"},
                "capacity": {"type": "integer"}
            },
            "required": ["roomNo", "totalBenches"]
        },
        "GenerateSeatingRequest": {
            "type": "object",
            "properties": {
                "examDate": {"type": "string"},
                "arrangementName": {"type": "string"},
                "departments": {"type": "array", "items": {"type": "string"}},
                "classes": {"type": "array", "items": {"type": "string"}},
                "subjects": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["examDate", "departments", "classes", "subjects"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["consolidated", "room", "supervisor"]},
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "examDate": {"type": "string"},
                "roomNo": {"type": "string"}
            },
            "required": ["type", "format", "examDate"]
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
