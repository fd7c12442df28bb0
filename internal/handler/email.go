package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Nota0515/bhakti/internal/mail"
)

// EmailHandler exposes the thin mail relay. Callers treat any non-200
// as non-fatal to their own workflow, so the handler only has to be
// honest about what happened.
type EmailHandler struct {
	Mailer mail.Mailer
}

func NewEmailHandler(m mail.Mailer) *EmailHandler { return &EmailHandler{Mailer: m} }

type sendEmailReq struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Send handles POST /api/send-email.
func (h *EmailHandler) Send(c echo.Context) error {
	var req sendEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing required fields"})
	}

	res, err := h.Mailer.Send(c.Request().Context(), mail.Message{
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Failed to send email",
			"error":   err.Error(),
		})
	}

	body := echo.Map{
		"message":   "Email sent successfully",
		"messageId": res.MessageID,
	}
	if res.PreviewURL != "" {
		body["previewUrl"] = res.PreviewURL
	}
	return c.JSON(http.StatusOK, body)
}
