// Package docs registers the swagger document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/healthcheck/": {"get": {"tags": ["health"], "summary": "Healthcheck", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/auth/session": {
            "post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Upstream token rejected"}}},
            "delete": {"tags": ["auth"], "summary": "Logout", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/auth/session/language": {"put": {"tags": ["auth"], "summary": "Switch language", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/session/events": {"get": {"tags": ["auth"], "summary": "Session audit trail", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "501": {"description": "Audit log not configured"}}}},
        "/analytics/overview": {"get": {"tags": ["analytics"], "summary": "Dashboard overview", "responses": {"200": {"description": "OK"}}}},
        "/analytics/monthly": {"get": {"tags": ["analytics"], "summary": "Monthly trends", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/departments": {"get": {"tags": ["analytics"], "summary": "Department performance", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/categories": {"get": {"tags": ["analytics"], "summary": "Category distribution", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/wards": {"get": {"tags": ["analytics"], "summary": "Ward statistics", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/workers": {"get": {"tags": ["analytics"], "summary": "Worker productivity", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/priorities": {"get": {"tags": ["analytics"], "summary": "Priority analysis", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/today": {"get": {"tags": ["analytics"], "summary": "Today counters", "responses": {"200": {"description": "OK"}, "403": {"description": "Section not available"}}}},
        "/analytics/export": {"get": {"tags": ["analytics"], "summary": "Export dashboard", "security": [{"BearerAuth": []}], "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "Workbook"}}}},
        "/analytics/history": {"get": {"tags": ["analytics"], "summary": "Snapshot history", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "501": {"description": "Archive not configured"}}}},
        "/activity/recent": {"get": {"tags": ["activity"], "summary": "Recent activity", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/activity/notifications": {"get": {"tags": ["activity"], "summary": "Notifications", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/activity/realtime": {"get": {"tags": ["activity"], "summary": "Real-time activity chart", "responses": {"200": {"description": "OK"}}}},
        "/refresh/auto": {"put": {"tags": ["refresh"], "summary": "Toggle auto-refresh", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/refresh/status": {"get": {"tags": ["refresh"], "summary": "Auto-refresh status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "VIKSIT KANPUR Analytics API",
	Description:      "Dashboard analytics over the municipal complaint backend",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
