// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/publisher/main.go
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
        "/health": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Liveness of the broker connection",
                "responses": {
                    "200": {"description": "ok", "schema": {"type": "string"}},
                    "503": {"description": "unavailable", "schema": {"type": "string"}}
                }
            }
        },
        "/publishing/batch-jobs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "Create one publishing job per video and enqueue its tasks",
                "parameters": [
                    {"description": "batch payload", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httptransport.createBatchJobDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "array", "items": {"$ref": "#/definitions/httptransport.jobResp"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.batchErrorResp"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.batchErrorResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.batchErrorResp"}}
                }
            }
        },
        "/publishing/jobs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "List the caller's publishing jobs, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/httptransport.jobSummaryResp"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "Create a publishing job",
                "parameters": [
                    {"description": "job payload", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/httptransport.createJobDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/httptransport.jobResp"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            }
        },
        "/publishing/jobs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "Get a publishing job with its tasks",
                "parameters": [
                    {"type": "string", "description": "job id (uuid)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.jobResp"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["publishing"],
                "summary": "Delete a publishing job",
                "parameters": [
                    {"type": "string", "description": "job id (uuid)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            }
        },
        "/publishing/jobs/{id}/execute": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "Start a publishing job",
                "parameters": [
                    {"type": "string", "description": "job id (uuid)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.jobResp"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            }
        },
        "/publishing/jobs/{id}/retry": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "Reset failed tasks to PENDING",
                "parameters": [
                    {"type": "string", "description": "job id (uuid)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.jobResp"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httptransport.apiError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            }
        },
        "/publishing/queue/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["publishing"],
                "summary": "Message counts of the publishing queues",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httptransport.queueStatusResp"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/httptransport.apiError"}}
                }
            }
        }
    },
    "definitions": {
        "httptransport.apiError": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "httptransport.taskTargetDTO": {
            "type": "object",
            "required": ["socialAccountId", "videoId"],
            "properties": {
                "socialAccountId": {"type": "string"},
                "videoId": {"type": "string"}
            }
        },
        "httptransport.createJobDTO": {
            "type": "object",
            "required": ["tasks", "title"],
            "properties": {
                "description": {"type": "string", "maxLength": 5000},
                "scheduledAt": {"type": "string"},
                "tasks": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/httptransport.taskTargetDTO"}},
                "title": {"type": "string", "maxLength": 255}
            }
        },
        "httptransport.batchTargetDTO": {
            "type": "object",
            "required": ["socialAccountId"],
            "properties": {"socialAccountId": {"type": "string"}}
        },
        "httptransport.batchItemDTO": {
            "type": "object",
            "required": ["targets", "videoId"],
            "properties": {
                "customDescription": {"type": "string", "maxLength": 5000},
                "customTitle": {"type": "string", "maxLength": 255},
                "targets": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/httptransport.batchTargetDTO"}},
                "videoId": {"type": "string"}
            }
        },
        "httptransport.createBatchJobDTO": {
            "type": "object",
            "required": ["jobs"],
            "properties": {
                "batchTitle": {"type": "string", "maxLength": 255},
                "jobs": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/httptransport.batchItemDTO"}},
                "scheduledAt": {"type": "string"}
            }
        },
        "httptransport.videoResp": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "title": {"type": "string"}}
        },
        "httptransport.socialAccountResp": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "platform": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "httptransport.taskResp": {
            "type": "object",
            "properties": {
                "attempts": {"type": "integer"},
                "createdAt": {"type": "string"},
                "errorMessage": {"type": "string"},
                "id": {"type": "string"},
                "platformPostId": {"type": "string"},
                "socialAccount": {"$ref": "#/definitions/httptransport.socialAccountResp"},
                "status": {"type": "string"},
                "updatedAt": {"type": "string"},
                "video": {"$ref": "#/definitions/httptransport.videoResp"}
            }
        },
        "httptransport.jobResp": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "scheduledAt": {"type": "string"},
                "status": {"type": "string"},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/httptransport.taskResp"}},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "httptransport.jobSummaryResp": {
            "type": "object",
            "properties": {
                "completedTasks": {"type": "integer"},
                "createdAt": {"type": "string"},
                "description": {"type": "string"},
                "failedTasks": {"type": "integer"},
                "id": {"type": "string"},
                "scheduledAt": {"type": "string"},
                "status": {"type": "string"},
                "title": {"type": "string"},
                "totalTasks": {"type": "integer"},
                "updatedAt": {"type": "string"}
            }
        },
        "httptransport.queueStatsResp": {
            "type": "object",
            "properties": {
                "deadLetter": {"type": "integer"},
                "pending": {"type": "integer"},
                "retry": {"type": "integer"}
            }
        },
        "httptransport.queueStatusResp": {
            "type": "object",
            "properties": {"rabbitmq": {"$ref": "#/definitions/httptransport.queueStatsResp"}}
        },
        "httptransport.batchErrorResp": {
            "type": "object",
            "properties": {
                "failedIndex": {"type": "integer"},
                "jobs": {"type": "array", "items": {"$ref": "#/definitions/httptransport.jobResp"}},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Video Publisher API",
	Description:      "Publishing jobs that fan a video out to social accounts through a RabbitMQ task queue.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
