// Package docs registers the relay's OpenAPI document with swag so the
// Swagger UI served at /api/v1/docs can load it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/proxy/classify-image": {
            "post": {
                "description": "Classifies an uploaded image",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["proxy"],
                "summary": "Classify image",
                "parameters": [
                    {"type": "file", "description": "Image to classify", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ClassificationResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/proxy/search-similar-images": {
            "post": {
                "description": "Finds images visually similar to an uploaded image",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["proxy"],
                "summary": "Search similar images",
                "parameters": [
                    {"type": "file", "description": "Reference image", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SimilarImagesResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/proxy/search-images-by-text": {
            "get": {
                "description": "Finds images matching a text query",
                "produces": ["application/json"],
                "tags": ["proxy"],
                "summary": "Search images by text",
                "parameters": [
                    {"type": "string", "description": "Search query", "name": "query", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TextSearchResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.Prediction": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "confidence": {"type": "number"}
            }
        },
        "models.ClassificationResult": {
            "type": "object",
            "properties": {
                "top_predictions": {"type": "array", "items": {"$ref": "#/definitions/models.Prediction"}}
            }
        },
        "models.ImageEntry": {
            "type": "object",
            "properties": {
                "url": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "models.SimilarImagesResult": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "similar_images": {"type": "array", "items": {"$ref": "#/definitions/models.ImageEntry"}}
            }
        },
        "models.TextSearchResult": {
            "type": "object",
            "properties": {
                "images": {"type": "array", "items": {"$ref": "#/definitions/models.ImageEntry"}}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "integer"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Image Search Relay",
	Description:      "Relays image classification and search requests to the backend with the API key attached",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
