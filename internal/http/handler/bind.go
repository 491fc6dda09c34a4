package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// bind decodes exactly one JSON object from the request body with unknown
// fields rejected and trailing content disallowed.
func bind(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	defer c.Request.Body.Close()

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// try to decode another JSON value; extra syntax is rejected
	if dec.Decode(&struct{}{}) != io.EOF {
		return errors.New("expected EOF (trailing content not allowed)")
	}
	return nil
}
