// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and response helpers.

# Middleware

  - WithLogging: logs request start/completion with method, path, duration
  - CORS: allows cross-origin requests from the survey frontend
    (cookies require Allow-Credentials, so the origin is echoed back)

# Helpers

  - JSONResponse: writes a JSON response with status code
  - ErrorResponse: writes a models.ErrorResponse with status text
  - ParseJSONBody: decodes a JSON request body

# Usage

	mux.HandleFunc("POST /trials", middleware.WithLogging(handler.SubmitTrial))

	middleware.JSONResponse(w, http.StatusOK, response)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
*/
package middleware
