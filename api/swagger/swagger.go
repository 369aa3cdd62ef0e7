package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "School weekly timetable generator: configurations, grid generation, clash detection and exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Administrator authentication"},
        {"name": "Configs", "description": "School schedule configurations"},
        {"name": "Timetables", "description": "Grid generation and saved timetables"},
        {"name": "Clashes", "description": "Advisory clash scans"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF exports"},
        {"name": "Settings", "description": "Full configuration round-trip"},
        {"name": "System", "description": "Probes and runtime status"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate an administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated user",
                "responses": {
                    "200": {"description": "Claims", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/configs": {
            "get": {
                "tags": ["Configs"],
                "summary": "List schedule configurations",
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
                "tags": ["Configs"],
                "summary": "Create a schedule configuration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveConfigRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/configs/import": {
            "post": {
                "tags": ["Settings"],
                "summary": "Import a configuration from a settings document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SettingsDocument"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/configs/{id}": {
            "get": {
                "tags": ["Configs"],
                "summary": "Get a schedule configuration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Configs"],
                "summary": "Replace a schedule configuration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Configs"],
                "summary": "Delete a schedule configuration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/configs/{id}/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Export a configuration with its saved grids as JSON",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Settings document", "schema": {"$ref": "#/definitions/SettingsDocument"}}
                }
            }
        },
        "/configs/{id}/subjects/{name}": {
            "delete": {
                "tags": ["Configs"],
                "summary": "Remove a subject and cascade it out of saved grids",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cells cleared count"},
                    "404": {"description": "Subject not found"}
                }
            }
        },
        "/configs/{id}/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List saved timetables for a configuration",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Save a class timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Saved"}
                }
            }
        },
        "/configs/{id}/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a class timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "Grid with findings"},
                    "422": {"description": "No time slots defined"}
                }
            }
        },
        "/configs/{id}/clashes/check": {
            "post": {
                "tags": ["Clashes"],
                "summary": "Scan one class grid for clashes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClashCheckRequest"}}
                ],
                "responses": {
                    "200": {"description": "Clash report"}
                }
            }
        },
        "/configs/{id}/clashes/teachers": {
            "get": {
                "tags": ["Clashes"],
                "summary": "Scan all saved grids for teacher double bookings",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Clash report"}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a saved timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a saved timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/timetables/{id}/cells": {
            "patch": {
                "tags": ["Timetables"],
                "summary": "Edit one cell of a saved timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CellEditRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "409": {"description": "Cell is fixed"}
                }
            }
        },
        "/timetables/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job accepted"}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Get export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job record"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export artifact via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/status": {
            "get": {
                "tags": ["System"],
                "summary": "Runtime metrics snapshot",
                "responses": {
                    "200": {"description": "Snapshot"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SaveConfigRequest": {
            "type": "object",
            "required": ["schoolName", "days", "periodsByDay"],
            "properties": {
                "schoolName": {"type": "string"},
                "closingTime": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "periodsByDay": {"type": "object"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/Subject"}},
                "fixedEvents": {"type": "array", "items": {"type": "object"}},
                "fixedAssignments": {"type": "array", "items": {"type": "object"}}
            }
        },
        "Subject": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "hoursPerWeek": {"type": "integer"},
                "teacher": {"type": "string"},
                "singleTeacher": {"type": "boolean"},
                "noClash": {"type": "boolean"}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "required": ["className"],
            "properties": {
                "className": {"type": "string"},
                "autoFill": {"type": "boolean"}
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "required": ["className", "grid"],
            "properties": {
                "className": {"type": "string"},
                "grid": {"type": "object"}
            }
        },
        "CellEditRequest": {
            "type": "object",
            "required": ["day"],
            "properties": {
                "day": {"type": "string"},
                "row": {"type": "integer"},
                "text": {"type": "string"},
                "teacher": {"type": "string"}
            }
        },
        "ClashCheckRequest": {
            "type": "object",
            "required": ["className"],
            "properties": {
                "className": {"type": "string"},
                "grid": {"type": "object"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "SettingsDocument": {
            "type": "object",
            "properties": {
                "schoolName": {"type": "string"},
                "closingTime": {"type": "string"},
                "days": {"type": "array", "items": {"type": "string"}},
                "periodsByDay": {"type": "object"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/Subject"}},
                "fixedEvents": {"type": "array", "items": {"type": "object"}},
                "fixedAssignments": {"type": "array", "items": {"type": "object"}},
                "timetables": {"type": "object"}
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
