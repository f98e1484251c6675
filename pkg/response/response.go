package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lifehub/internal/policy"
	"lifehub/pkg/apperror"
	appvalidator "lifehub/pkg/validator"
)

const actorKey = "actor"

// SetActor stores the request actor; middleware is the only writer.
func SetActor(c *gin.Context, actor policy.Actor) {
	c.Set(actorKey, actor)
}

// Actor returns the actor attached by the auth middleware, or the anonymous
// actor when no middleware ran.
func Actor(c *gin.Context) policy.Actor {
	value, exists := c.Get(actorKey)
	if !exists {
		return policy.Anonymous()
	}
	actor, ok := value.(policy.Actor)
	if !ok {
		return policy.Anonymous()
	}
	return actor
}

// Error writes a standardized error response. Validation failures carry the
// full field-keyed message map; everything else is a single message.
func Error(c *gin.Context, err error) {
	if ve, ok := apperror.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": ve.Fields})
		return
	}

	code := apperror.MapErrorToStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// BindError converts a gin binding failure into a 400 with field messages.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": appvalidator.FieldErrors(err)})
}
