package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/service"
	"github.com/pageza/mealplanner/backend/internal/validation"
	"go.uber.org/zap"
)

// resourceMessages are the user-facing texts for one kind of resource.
type resourceMessages struct {
	badID     string
	forbidden string
	notFound  string
}

var (
	recipeMessages = resourceMessages{
		badID:     "Nieprawidłowy format ID przepisu",
		forbidden: "Brak dostępu do tego przepisu",
		notFound:  "Przepis nie został znaleziony",
	}
	aiRunMessages = resourceMessages{
		badID:     "Nieprawidłowy format ID wywołania AI",
		forbidden: "Brak dostępu do tego wywołania AI",
		notFound:  "Wywołanie AI nie zostało znalezione",
	}
)

const quotaMessage = "Przekroczono limit 100 przepisów na użytkownika"

var aiMessages = map[llm.Kind]string{
	llm.KindAuthentication:    "Błąd uwierzytelniania API - skontaktuj się z administratorem",
	llm.KindRateLimit:         "Przekroczono limit zapytań do AI - spróbuj ponownie za chwilę",
	llm.KindModelNotSupported: "Model AI jest tymczasowo niedostępny - spróbuj ponownie za chwilę",
	llm.KindNetwork:           "Problem z połączeniem do serwisu AI - spróbuj ponownie za chwilę",
	llm.KindInvalidSchema:     "AI zwróciło nieprawidłowy format danych - spróbuj ponownie",
}

// respondError converts a service error into its JSON envelope.
func respondError(c *gin.Context, log *zap.Logger, err error, msgs resourceMessages) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "details": verr.Fields})
		return
	}
	if llmErr, ok := llm.AsError(err); ok {
		message, known := aiMessages[llmErr.Kind]
		if !known {
			message = llmErr.Message
		}
		status := llmErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		log.Warn("ai request failed",
			zap.String("kind", llmErr.Kind.String()),
			zap.String("code", llmErr.Code),
			zap.Int("status", status),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "AI Error", "message": message})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": msgs.notFound})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN", "message": msgs.forbidden})
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "message": quotaMessage})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request", "details": gin.H{"body": err.Error()}})
}

func badID(c *gin.Context, msgs resourceMessages) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "BAD_REQUEST", "message": msgs.badID})
}
