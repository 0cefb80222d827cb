// Package docs registra la especificación OpenAPI servida en /swagger.
// Regenerar con: swag init -g cmd/api/main.go -o docs
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
        "/coffee-breaks": {
            "post": {
                "description": "Invita a uno o más amigos (ACCEPTED). Si se indica campus y no location, la ubicación es el nombre del campus. Cada invitado recibe una notificación.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "coffee-breaks"
                ],
                "summary": "Crear coffee break",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Invitados y horario; scheduled_to en RFC3339",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/coffeebreaks.createCoffeeBreakRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/coffeebreaks.coffeeBreakResponse"
                        }
                    },
                    "400": {
                        "description": "invalid json / invalid input / not a friend",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "coffee-breaks"
                ],
                "summary": "Listar mis coffee breaks",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/coffeebreaks.coffeeBreakResponse"
                            }
                        }
                    }
                }
            }
        },
        "/coffee-breaks/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "coffee-breaks"
                ],
                "summary": "Ver coffee break",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "ID del coffee break",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/coffeebreaks.coffeeBreakResponse"
                        }
                    },
                    "404": {
                        "description": "coffee break not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "coffee-breaks"
                ],
                "summary": "Cancelar coffee break",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "ID del coffee break",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "coffee break not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/friends": {
            "post": {
                "description": "Crea el vínculo en estado REQUESTED. El addressee recibe una notificación.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "friends"
                ],
                "summary": "Enviar solicitud de amistad",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Destinatario",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/friendships.requestFriendshipRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/friendships.friendshipResponse"
                        }
                    },
                    "400": {
                        "description": "invalid json / invalid input",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "user not found",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "409": {
                        "description": "friendship already exists",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "friends"
                ],
                "summary": "Listar vínculos propios",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "REQUESTED | ACCEPTED | DECLINED | BLOCKED",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/friendships.friendshipResponse"
                            }
                        }
                    },
                    "400": {
                        "description": "invalid input",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "put": {
                "description": "Aceptar/rechazar sólo lo puede hacer el addressee. Un vínculo ACCEPTED sólo puede pasar a BLOCKED.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "friends"
                ],
                "summary": "Cambiar estado de un vínculo",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Vínculo y nuevo estado",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/friendships.updateFriendshipRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/friendships.friendshipResponse"
                        }
                    },
                    "400": {
                        "description": "invalid status change",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "friendship not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/friends/{userID}": {
            "delete": {
                "tags": [
                    "friends"
                ],
                "summary": "Eliminar vínculo",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "La otra persona",
                        "name": "userID",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "friendship not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/login": {
            "post": {
                "description": "Devuelve un bearer token para usar en Authorization.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Credenciales",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/users.loginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.loginResponse"
                        }
                    },
                    "401": {
                        "description": "invalid email or password",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/me": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Perfil propio",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Editar perfil propio",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "description": "Campos a cambiar",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/users.updateMeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "400": {
                        "description": "validación",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "users"
                ],
                "summary": "Borrar cuenta propia",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/notifications": {
            "get": {
                "description": "Devuelve el inbox del usuario autenticado, más nuevas primero.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "notifications"
                ],
                "summary": "Listar notificaciones",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "Máximo de items (default 50, máx 200)",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/notifications.Envelope"
                            }
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/notifications/stream": {
            "get": {
                "description": "Upgrade a websocket; cada notificación nueva del usuario llega como un mensaje JSON (Envelope).",
                "tags": [
                    "notifications"
                ],
                "summary": "Stream de notificaciones (websocket)",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    }
                ],
                "responses": {
                    "101": {
                        "description": "switching protocols",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/notifications/{id}/seen": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "notifications"
                ],
                "summary": "Marcar notificación como vista",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Solo en modo dev",
                        "name": "X-Debug-User-ID",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "ID de la notificación",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/notifications.Envelope"
                        }
                    },
                    "401": {
                        "description": "unauthorized",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "403": {
                        "description": "forbidden",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "404": {
                        "description": "notification not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/register": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Registrar usuario",
                "parameters": [
                    {
                        "description": "Datos de registro",
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/users.registerRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "400": {
                        "description": "invalid json / validación",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "409": {
                        "description": "email or username already in use",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/universities": {
            "get": {
                "description": "Sin campus; para el detalle usar /universities/{id}.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "universities"
                ],
                "summary": "Listar universidades",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/universities.universityResponse"
                            }
                        }
                    }
                }
            }
        },
        "/universities/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "universities"
                ],
                "summary": "Ver universidad con sus campus",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "ID de la universidad",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/universities.universityResponse"
                        }
                    },
                    "404": {
                        "description": "university not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/users": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Buscar usuarios",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "string",
                        "description": "Texto a buscar (nombre, username o email)",
                        "name": "q",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Máximo de resultados",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/users.userResponse"
                            }
                        }
                    }
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "users"
                ],
                "summary": "Ver usuario",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "ID del usuario",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/users.userResponse"
                        }
                    },
                    "404": {
                        "description": "user not found",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/users/{id}/friends/count": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "friends"
                ],
                "summary": "Cantidad de amigos",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bearer token",
                        "name": "Authorization",
                        "in": "header"
                    },
                    {
                        "type": "integer",
                        "description": "ID del usuario",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/friendships.countResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "coffeebreaks.coffeeBreakResponse": {
            "type": "object",
            "properties": {
                "addressee_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "campus_id": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "location": {
                    "type": "string"
                },
                "requester_id": {
                    "type": "integer"
                },
                "scheduled_to": {
                    "type": "string"
                }
            }
        },
        "coffeebreaks.createCoffeeBreakRequest": {
            "type": "object",
            "properties": {
                "addressee_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "campus_id": {
                    "type": "integer"
                },
                "location": {
                    "type": "string"
                },
                "scheduled_to": {
                    "type": "string"
                }
            }
        },
        "friendships.Status": {
            "type": "string",
            "enum": [
                "REQUESTED",
                "ACCEPTED",
                "DECLINED",
                "BLOCKED"
            ],
            "x-enum-varnames": [
                "StatusRequested",
                "StatusAccepted",
                "StatusDeclined",
                "StatusBlocked"
            ]
        },
        "friendships.countResponse": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                },
                "user_id": {
                    "type": "integer"
                }
            }
        },
        "friendships.friendshipResponse": {
            "type": "object",
            "properties": {
                "addressee_id": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "requester_id": {
                    "type": "integer"
                },
                "status": {
                    "$ref": "#/definitions/friendships.Status"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "friendships.requestFriendshipRequest": {
            "type": "object",
            "properties": {
                "addressee_id": {
                    "type": "integer"
                }
            }
        },
        "friendships.updateFriendshipRequest": {
            "type": "object",
            "properties": {
                "addressee_id": {
                    "type": "integer"
                },
                "requester_id": {
                    "type": "integer"
                },
                "status": {
                    "$ref": "#/definitions/friendships.Status"
                }
            }
        },
        "notifications.CoffeeBreakDetails": {
            "type": "object",
            "properties": {
                "location": {
                    "type": "string"
                },
                "participants": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                },
                "scheduled_to": {
                    "type": "string"
                }
            }
        },
        "notifications.Envelope": {
            "type": "object",
            "properties": {
                "actor": {
                    "$ref": "#/definitions/notifications.UserDetails"
                },
                "coffee_break": {
                    "$ref": "#/definitions/notifications.CoffeeBreakDetails"
                },
                "created_at": {
                    "type": "string"
                },
                "event_id": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "kind": {
                    "$ref": "#/definitions/notifications.Kind"
                },
                "message": {
                    "type": "string"
                },
                "recipient_id": {
                    "type": "integer"
                },
                "seen": {
                    "type": "boolean"
                },
                "subject_id": {
                    "type": "integer"
                }
            }
        },
        "notifications.Kind": {
            "type": "string",
            "enum": [
                "FRIEND_REQUEST",
                "FRIEND_REQUEST_ACCEPTED",
                "COFFEE_BREAK_CREATED"
            ],
            "x-enum-varnames": [
                "KindFriendRequest",
                "KindFriendRequestAccepted",
                "KindCoffeeBreakCreated"
            ]
        },
        "notifications.UserDetails": {
            "type": "object",
            "properties": {
                "display_name": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                }
            }
        },
        "universities.campusResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "universities.universityResponse": {
            "type": "object",
            "properties": {
                "campuses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/universities.campusResponse"
                    }
                },
                "id": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                }
            }
        },
        "users.loginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "users.loginResponse": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                },
                "expires_in": {
                    "type": "integer"
                },
                "token_type": {
                    "type": "string"
                },
                "user": {
                    "$ref": "#/definitions/users.userResponse"
                }
            }
        },
        "users.registerRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                },
                "university_id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                }
            }
        },
        "users.updateMeRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "university_id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                }
            }
        },
        "users.userResponse": {
            "type": "object",
            "properties": {
                "created_at": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "id": {
                    "type": "integer"
                },
                "last_login_at": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "university_id": {
                    "type": "integer"
                },
                "username": {
                    "type": "string"
                }
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Coffee With Me API",
	Description:      "Amistades, coffee breaks y notificaciones entre estudiantes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
