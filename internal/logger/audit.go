package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LogAction writes an audit entry for a mutation performed by the authenticated user.
func LogAction(c *gin.Context, action, resourceType, resourceID string) {
	fields := logrus.Fields{
		"action":        action,
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"ip":            c.ClientIP(),
		"user_agent":    c.Request.UserAgent(),
	}
	if userID, ok := c.Get("userID"); ok {
		fields["user_id"] = userID
	}
	if requestID, ok := c.Get("requestID"); ok {
		fields["request_id"] = requestID
	}
	Audit().WithFields(fields).Info(action)
}
