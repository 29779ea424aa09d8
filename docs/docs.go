// Package docs registers the OpenAPI document served under /swagger.
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
        "/authors": {
            "get": {"tags": ["authors"], "summary": "List authors", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}},
            "post": {"tags": ["authors"], "summary": "Create an author", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}, "400": {"description": "Validation error"}, "409": {"description": "Business rule violation"}}}
        },
        "/authors/{id}": {
            "get": {"tags": ["authors"], "summary": "Get an author", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["authors"], "summary": "Update an author", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "404": {"description": "Not found"}, "409": {"description": "Business rule violation"}}},
            "delete": {"tags": ["authors"], "summary": "Delete an author without books", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Author still has books"}}}
        },
        "/books": {
            "get": {"tags": ["books"], "summary": "List books", "parameters": [{"name": "author_id", "in": "query", "type": "integer"}, {"name": "genre", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["books"], "summary": "Create a book", "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "404": {"description": "Author not found"}, "409": {"description": "Duplicate title"}}}
        },
        "/books/{id}": {
            "get": {"tags": ["books"], "summary": "Get a book", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["books"], "summary": "Update a book", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Author cannot change"}}},
            "delete": {"tags": ["books"], "summary": "Delete a book without active loans", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Book has active loans"}}}
        },
        "/books/{id}/inventory": {
            "get": {"tags": ["inventories"], "summary": "Get the inventory of a book", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/students": {
            "get": {"tags": ["students"], "summary": "List students", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["students"], "summary": "Create a student", "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "409": {"description": "Duplicate email, code or phone"}}}
        },
        "/students/{id}": {
            "get": {"tags": ["students"], "summary": "Get a student", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["students"], "summary": "Update a student", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Duplicate email, code or phone"}}},
            "delete": {"tags": ["students"], "summary": "Delete a student without active loans", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Student has active loans"}}}
        },
        "/inventories": {
            "get": {"tags": ["inventories"], "summary": "List inventories", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["inventories"], "summary": "Register the inventory of a book", "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "404": {"description": "Book not found"}, "409": {"description": "Book already has an inventory"}}}
        },
        "/inventories/{id}": {
            "get": {"tags": ["inventories"], "summary": "Get an inventory", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["inventories"], "summary": "Update an inventory", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}}},
            "delete": {"tags": ["inventories"], "summary": "Delete an inventory without borrowed copies", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Copies still borrowed"}}}
        },
        "/loans": {
            "get": {"tags": ["loans"], "summary": "List loans", "parameters": [{"name": "state", "in": "query", "type": "string"}, {"name": "student_id", "in": "query", "type": "integer"}, {"name": "book_id", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["loans"], "summary": "Lend a book to a student", "responses": {"200": {"description": "OK"}, "400": {"description": "Validation error"}, "404": {"description": "Student or book not found"}, "409": {"description": "No copies available or duplicate active loan"}}}
        },
        "/loans/{id}": {
            "get": {"tags": ["loans"], "summary": "Get a loan", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["loans"], "summary": "Update state, amount or observations", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Immutable field or frozen loan"}}},
            "delete": {"tags": ["loans"], "summary": "Delete a returned loan and its return", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Loan is still active"}}}
        },
        "/returns": {
            "get": {"tags": ["returns"], "summary": "List returns", "parameters": [{"name": "loan_id", "in": "query", "type": "integer"}, {"name": "student_id", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["returns"], "summary": "Register the return of a loan", "responses": {"200": {"description": "OK"}, "404": {"description": "Loan not found"}, "409": {"description": "Loan already returned"}}}
        },
        "/returns/{id}": {
            "get": {"tags": ["returns"], "summary": "Get a return", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["returns"], "summary": "Always rejected", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"405": {"description": "Returns are immutable once created."}}},
            "delete": {"tags": ["returns"], "summary": "Delete a return", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/labels/books": {
            "get": {"tags": ["labels"], "summary": "Export book labels as CSV", "produces": ["text/csv"], "parameters": [{"name": "ids", "in": "query", "type": "string"}, {"name": "encoding", "in": "query", "type": "string", "enum": ["sjis", "utf8"]}], "responses": {"200": {"description": "CSV file"}}}
        },
        "/genres": {
            "get": {"tags": ["genres"], "summary": "Genres with book and copy counts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/respond.Envelope"}}}}
        },
        "/genres/{name}": {
            "get": {"tags": ["genres"], "summary": "One genre summary", "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        }
    },
    "parameters": {
        "id": {"name": "id", "in": "path", "required": true, "type": "integer"}
    },
    "definitions": {
        "respond.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Library backend API",
	Description:      "Authors, books, students, inventories, loans and returns.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
