// Package docs holds the OpenAPI document served at /swagger. The operation
// list mirrors the swag annotations on the HTTP handlers.
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
		"/admin/clinics": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "List clinics",
				"parameters": [
					{
						"description": "Only active clinics",
						"name": "active",
						"in": "query",
						"required": false,
						"type": "boolean"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "The address is geocoded when coordinates are omitted. A geocoding miss leaves the clinic without a location.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Create clinic",
				"parameters": [
					{
						"description": "Clinic",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/clinics/{id}": {
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Update clinic",
				"parameters": [
					{
						"description": "Clinic ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Clinic",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/clinics/{id}/active": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Activate or deactivate clinic",
				"parameters": [
					{
						"description": "Clinic ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Active flag",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/competitors": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "List competitors",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Coordinates are geocoded from the address when omitted",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Create competitor",
				"parameters": [
					{
						"description": "Competitor",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/competitors/{id}": {
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"admin"
				],
				"summary": "Delete competitor",
				"parameters": [
					{
						"description": "Competitor ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/price-table": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "List all price items",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Create price item",
				"parameters": [
					{
						"description": "Price item",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/price-table/import-csv": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Valid rows are inserted in one transaction; invalid rows are reported with their 1-based data row index",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Import price table",
				"parameters": [
					{
						"description": "CSV (UTF-8 or Shift_JIS) or XLSX",
						"name": "file",
						"in": "formData",
						"required": true,
						"type": "file"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Unreadable file or missing columns",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/price-table/{id}": {
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Update price item",
				"parameters": [
					{
						"description": "Price item ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Price item",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"admin"
				],
				"summary": "Delete price item",
				"parameters": [
					{
						"description": "Price item ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/print-orders": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "List all print orders",
				"parameters": [
					{
						"description": "Status filter",
						"name": "status",
						"in": "query",
						"required": false,
						"type": "string"
					},
					{
						"description": "Clinic filter",
						"name": "clinic_id",
						"in": "query",
						"required": false,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/print-orders/{id}/status": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Update print order status",
				"parameters": [
					{
						"description": "Order ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Next status",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Unknown status",
						"schema": {
							"type": "object"
						}
					},
					"409": {
						"description": "Transition not allowed",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/users": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "List users",
				"parameters": [
					{
						"description": "Clinic filter",
						"name": "clinic_id",
						"in": "query",
						"required": false,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Create user",
				"parameters": [
					{
						"description": "User",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"409": {
						"description": "Email already registered",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/admin/users/{id}": {
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"admin"
				],
				"summary": "Update user",
				"parameters": [
					{
						"description": "User ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "User",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"admin"
				],
				"summary": "Deactivate user",
				"parameters": [
					{
						"description": "User ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Cannot deactivate yourself",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"description": "Authenticates user with email and password, returns JWT token and landing route",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "User login",
				"parameters": [
					{
						"description": "Login credentials",
						"name": "credentials",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid request body or missing credentials",
						"schema": {
							"type": "object"
						}
					},
					"401": {
						"description": "Invalid credentials",
						"schema": {
							"type": "object"
						}
					},
					"429": {
						"description": "Too many attempts",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/auth/logout": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Revokes the bearer token until it expires",
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "User logout",
				"responses": {
					"200": {
						"description": "Success response",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/auth/me": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Returns the current user with role, clinic scope and landing route",
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Get current user",
				"responses": {
					"200": {
						"description": "User data",
						"schema": {
							"type": "object"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/auth/select-clinic": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Re-issues the admin token with a new acting clinic; an empty id clears it",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Select acting clinic",
				"parameters": [
					{
						"description": "Clinic",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "Not a system admin",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Clinic not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/clinic": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"clinic"
				],
				"summary": "Get own clinic",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"clinic"
				],
				"summary": "Update own clinic",
				"parameters": [
					{
						"description": "Clinic profile",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/clinic/users": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"clinic"
				],
				"summary": "List clinic users",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/dashboard": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Latest month, trend series, period totals and MoM/YoY revenue deltas",
				"produces": [
					"application/json"
				],
				"tags": [
					"dashboard"
				],
				"summary": "Clinic dashboard",
				"parameters": [
					{
						"description": "Window in months (default 12, max 36)",
						"name": "months",
						"in": "query",
						"required": false,
						"type": "int"
					},
					{
						"description": "Clinic to act on (system admin only)",
						"name": "X-Clinic-ID",
						"in": "header",
						"required": false,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid window or no clinic selected",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/events/live": {
			"get": {
				"description": "Upgrades to a WebSocket that streams print order and data events of the caller's clinic. Browsers pass the token as access_token. A system admin receives the clinic in clinic_id, the selected clinic, or every clinic.",
				"tags": [
					"events"
				],
				"summary": "Live clinic events",
				"parameters": [
					{
						"type": "string",
						"description": "Bearer token",
						"name": "access_token",
						"in": "query"
					},
					{
						"type": "string",
						"description": "Clinic (system admin only)",
						"name": "clinic_id",
						"in": "query"
					}
				],
				"responses": {
					"101": {
						"description": "Switching protocols",
						"schema": {
							"type": "string"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object"
						}
					},
					"403": {
						"description": "No clinic assigned",
						"schema": {
							"type": "object"
						}
					},
					"503": {
						"description": "Live events disabled",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/market-analysis": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Center comes from explicit coordinates, a geocoded address or the clinic location. Competitors within the radius are listed nearest first.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"market-analysis"
				],
				"summary": "Create market analysis",
				"parameters": [
					{
						"description": "Center and radius",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid radius or coordinates",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Location unknown",
						"schema": {
							"type": "object"
						}
					},
					"502": {
						"description": "Geocoder unavailable",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"market-analysis"
				],
				"summary": "List market analyses",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/market-analysis/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"market-analysis"
				],
				"summary": "Get market analysis",
				"parameters": [
					{
						"description": "Analysis ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/menu": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Menu items filtered by the caller's role, in display order",
				"produces": [
					"application/json"
				],
				"tags": [
					"navigation"
				],
				"summary": "Navigation menu",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"401": {
						"description": "Unauthorized",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/monthly-data": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Rows in month order with totals and formatted amounts. Bounds are inclusive YYYY-MM.",
				"produces": [
					"application/json"
				],
				"tags": [
					"monthly-data"
				],
				"summary": "List monthly data",
				"parameters": [
					{
						"description": "First month",
						"name": "from",
						"in": "query",
						"required": false,
						"type": "string"
					},
					{
						"description": "Last month",
						"name": "to",
						"in": "query",
						"required": false,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Totals are computed server side; a month can only be created once",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"monthly-data"
				],
				"summary": "Create monthly data",
				"parameters": [
					{
						"description": "Figures",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"409": {
						"description": "Month already exists",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/monthly-data/export": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "XLSX with the import column headers plus computed totals; the file can be re-imported as is",
				"produces": [
					"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
				],
				"tags": [
					"monthly-data"
				],
				"summary": "Export monthly data",
				"parameters": [
					{
						"description": "First month",
						"name": "from",
						"in": "query",
						"required": false,
						"type": "string"
					},
					{
						"description": "Last month",
						"name": "to",
						"in": "query",
						"required": false,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					}
				}
			}
		},
		"/monthly-data/import-csv": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Every row is validated first; valid rows are upserted in one transaction. Unreadable files or missing columns fail the whole upload.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"monthly-data"
				],
				"summary": "Import monthly data",
				"parameters": [
					{
						"description": "CSV (UTF-8 or Shift_JIS) or XLSX",
						"name": "file",
						"in": "formData",
						"required": true,
						"type": "file"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Unreadable file",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/monthly-data/{yearMonth}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"monthly-data"
				],
				"summary": "Get monthly data",
				"parameters": [
					{
						"description": "YYYY-MM",
						"name": "yearMonth",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"monthly-data"
				],
				"summary": "Update monthly data",
				"parameters": [
					{
						"description": "YYYY-MM",
						"name": "yearMonth",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Figures",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"monthly-data"
				],
				"summary": "Delete monthly data",
				"parameters": [
					{
						"description": "YYYY-MM",
						"name": "yearMonth",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/navigation/resolve": {
			"get": {
				"description": "Returns render, wait or a redirect for the given client path. Works without a token.",
				"produces": [
					"application/json"
				],
				"tags": [
					"navigation"
				],
				"summary": "Resolve a screen path",
				"parameters": [
					{
						"description": "Client path, e.g. /clinic/staff",
						"name": "path",
						"in": "query",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/price-table": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"print-orders"
				],
				"summary": "List price table",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/print-orders": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"print-orders"
				],
				"summary": "Create print order",
				"parameters": [
					{
						"description": "Order",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Unknown or inactive item",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"print-orders"
				],
				"summary": "List print orders",
				"parameters": [
					{
						"description": "Status filter",
						"name": "status",
						"in": "query",
						"required": false,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/print-orders/estimate": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"print-orders"
				],
				"summary": "Estimate print order",
				"parameters": [
					{
						"description": "Price item ID",
						"name": "price_item_id",
						"in": "query",
						"required": true,
						"type": "string"
					},
					{
						"description": "Design requested",
						"name": "design",
						"in": "query",
						"required": false,
						"type": "boolean"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Unknown or inactive item",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/print-orders/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"print-orders"
				],
				"summary": "Get print order",
				"parameters": [
					{
						"description": "Order ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/print-orders/{id}/cancel": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"print-orders"
				],
				"summary": "Cancel print order",
				"parameters": [
					{
						"description": "Order ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"409": {
						"description": "Order is no longer pending",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/reports": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Creates a pending report and queues the render job. The report becomes ready or failed asynchronously.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Create report",
				"parameters": [
					{
						"description": "Kind (monthly|annual) and period (YYYY-MM or YYYY)",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"202": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid kind or period",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "List reports",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/reports/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"reports"
				],
				"summary": "Get report",
				"parameters": [
					{
						"description": "Report ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/reports/{id}/download": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Redirects to the object URL when the store publishes one, otherwise streams the PDF",
				"produces": [
					"application/pdf"
				],
				"tags": [
					"reports"
				],
				"summary": "Download report",
				"parameters": [
					{
						"description": "Report ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					},
					"302": {
						"description": "Found"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"409": {
						"description": "Report not ready",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/simulations": {
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"description": "Projects from base_year_month, or the latest recorded month when omitted. Rates are percent per month.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"simulations"
				],
				"summary": "Create simulation",
				"parameters": [
					{
						"description": "Scenario",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"400": {
						"description": "Invalid parameters",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "No base month",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"simulations"
				],
				"summary": "List simulations",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/simulations/{id}": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"simulations"
				],
				"summary": "Get simulation",
				"parameters": [
					{
						"description": "Simulation ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"simulations"
				],
				"summary": "Delete simulation",
				"parameters": [
					{
						"description": "Simulation ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/staff": {
			"get": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"staff"
				],
				"summary": "List staff",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"post": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"staff"
				],
				"summary": "Create staff member",
				"parameters": [
					{
						"description": "Staff member",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/staff/{id}": {
			"put": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"staff"
				],
				"summary": "Update staff member",
				"parameters": [
					{
						"description": "Staff ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"description": "Staff member",
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					},
					"422": {
						"description": "Validation errors",
						"schema": {
							"type": "object"
						}
					}
				}
			},
			"delete": {
				"security": [
					{
						"BearerAuth": []
					}
				],
				"tags": [
					"staff"
				],
				"summary": "Delete staff member",
				"parameters": [
					{
						"description": "Staff ID",
						"name": "id",
						"in": "path",
						"required": true,
						"type": "string"
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"404": {
						"description": "Not found",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Bearer token issued by /auth/login",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "DentalBoard API",
	Description:      "Clinic management API: monthly figures, dashboards, market analysis, simulations, reports and print orders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
