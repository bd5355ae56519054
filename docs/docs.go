// Package docs holds the swagger description served at /swagger/*any.
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
        "/api/analyze": {
            "post": {
                "description": "Requests a news sentiment analysis and records it in the search history",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Analyze a cryptocurrency",
                "parameters": [
                    {
                        "description": "Query",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.analyzeRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Outcome"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/global-stats": {
            "get": {
                "description": "Returns the market overview; fallback is true when placeholder values are served",
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Global market snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/history": {
            "get": {
                "description": "Returns up to ten past successful analyses, most recent first",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Search history",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.HistoryEntry"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/session": {
            "get": {
                "description": "Re-reads the stored session token and returns the decoded identity",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Identity"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Returns the health status of the dashboard server",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "domain.Analysis": {
            "type": "object",
            "properties": {
                "confidence": {"type": "number"},
                "crypto": {"type": "string"},
                "reasons": {"type": "array", "items": {"type": "string"}},
                "recommendation": {"type": "string"},
                "sentiment": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/domain.Source"}},
                "stats": {"$ref": "#/definitions/domain.NewsStats"}
            }
        },
        "domain.HistoryEntry": {
            "type": "object",
            "properties": {
                "crypto": {"type": "string"},
                "sentiment": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "domain.Identity": {
            "type": "object",
            "properties": {
                "avatar": {"type": "string"},
                "displayName": {"type": "string"},
                "email": {"type": "string"},
                "id": {"type": "string"},
                "provider": {"type": "string"}
            }
        },
        "domain.NewsStats": {
            "type": "object",
            "properties": {
                "negativeNews": {"type": "integer"},
                "positiveNews": {"type": "integer"},
                "totalNews": {"type": "integer"}
            }
        },
        "domain.Source": {
            "type": "object",
            "properties": {
                "sentiment": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "handler.analyzeRequest": {
            "type": "object",
            "properties": {
                "query": {"type": "string"}
            }
        },
        "service.Notification": {
            "type": "object",
            "properties": {
                "level": {"type": "string"},
                "message": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "service.Outcome": {
            "type": "object",
            "properties": {
                "notice": {"$ref": "#/definitions/service.Notification"},
                "result": {"$ref": "#/definitions/domain.Analysis"},
                "seq": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3005",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Crypto Sentiment Dashboard API",
	Description:      "Session, history, analysis and market snapshot endpoints behind the sentiment dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
