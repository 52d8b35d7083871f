package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SGE API",
        "description": "Sistema de Gestão Escolar - enrollment, attendance, grading and period closing",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login and token lifecycle"},
        {"name": "Enrollments", "description": "Student enrollment lifecycle"},
        {"name": "AssessmentPeriods", "description": "Grading window management"},
        {"name": "Grades", "description": "Grade entry and averages"},
        {"name": "Attendance", "description": "Attendance, frequency and alerts"},
        {"name": "Justifications", "description": "Absence justification workflow"},
        {"name": "LessonRecords", "description": "Class diary"},
        {"name": "PeriodClosings", "description": "Period closing workflow"},
        {"name": "Rectifications", "description": "Post-closure rectifications"},
        {"name": "AcademicYears", "description": "Academic year lifecycle and closure"},
        {"name": "FinalResults", "description": "Year-end results"},
        {"name": "Dashboards", "description": "Cached class snapshots"},
        {"name": "Exports", "description": "CSV and PDF documents"}
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
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List active enrollments",
                "parameters": [
                    {"name": "classGroupId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/reassign": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Move an enrollment to another class group",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollments/transfer": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Transfer a student out of the school",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/assessment-periods": {
            "get": {
                "tags": ["AssessmentPeriods"],
                "summary": "List assessment periods",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["AssessmentPeriods"],
                "summary": "Create an assessment period",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate period"}
                }
            }
        },
        "/assessment-periods/{id}/transition": {
            "post": {
                "tags": ["AssessmentPeriods"],
                "summary": "Transition period status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grade entries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Record or replace a grade entry",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Closing already closed"}
                }
            }
        },
        "/grades/average": {
            "post": {
                "tags": ["Grades"],
                "summary": "Compute the period average for a student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for one student",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/attendance/bulk": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance for a whole class",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/attendance/frequency": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Compute a student frequency percentage",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/attendance/alerts": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Evaluate attendance alerts for a student",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/justifications": {
            "post": {
                "tags": ["Justifications"],
                "summary": "Register an absence justification",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/justifications/{id}/approve": {
            "post": {
                "tags": ["Justifications"],
                "summary": "Approve a justification and rewrite covered absences",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Already approved"}
                }
            }
        },
        "/lesson-records": {
            "get": {
                "tags": ["LessonRecords"],
                "summary": "List lesson records",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["LessonRecords"],
                "summary": "Register a taught-content entry",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/period-closings": {
            "get": {
                "tags": ["PeriodClosings"],
                "summary": "List period closings",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["PeriodClosings"],
                "summary": "Open a closing",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Closing already exists"}
                }
            }
        },
        "/period-closings/submit": {
            "post": {
                "tags": ["PeriodClosings"],
                "summary": "Submit a closing for validation",
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Invalid transition"}
                }
            }
        },
        "/period-closings/reject": {
            "post": {
                "tags": ["PeriodClosings"],
                "summary": "Reject a closing back to pending",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/period-closings/{id}/validate": {
            "post": {
                "tags": ["PeriodClosings"],
                "summary": "Approve a submitted closing",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/period-closings/{id}/finalize": {
            "post": {
                "tags": ["PeriodClosings"],
                "summary": "Close an approved closing definitively",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/rectifications": {
            "get": {
                "tags": ["Rectifications"],
                "summary": "List rectifications for a closing",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Rectifications"],
                "summary": "Request a rectification on a closed closing",
                "responses": {
                    "201": {"description": "Created"},
                    "412": {"description": "Closing not closed"}
                }
            }
        },
        "/rectifications/{id}/review": {
            "post": {
                "tags": ["Rectifications"],
                "summary": "Approve or deny a requested rectification",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/academic-years/{id}": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "Get an academic year",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/academic-years/{id}/close": {
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Close an academic year after all gates pass",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "412": {"description": "Closure gate failed"}
                }
            }
        },
        "/final-results": {
            "get": {
                "tags": ["FinalResults"],
                "summary": "List final results for an academic year",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["FinalResults"],
                "summary": "Record a final result for a student",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/dashboards/class-group": {
            "get": {
                "tags": ["Dashboards"],
                "summary": "Class group snapshot for a period",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exports/closing-summary": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the closing summary",
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/exports/final-results": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export year-end final results",
                "responses": {
                    "200": {"description": "File"}
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
