package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// UnmatchedRoute labels requests no registered route handled.
const UnmatchedRoute = "unmatched"

// RouteLabel returns the pattern of the route that handled c, for use as a
// metric label. The global middlewares are mounted at "/", so a request that
// only reached them is unmatched. Label values are retained by the collectors
// and must not alias fiber's request buffers, hence the copies.
func RouteLabel(c *fiber.Ctx) (route, method string) {
	route = UnmatchedRoute
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		route = utils.CopyString(r.Path)
	}
	return route, utils.CopyString(c.Method())
}

// RequestLogger logs each request and records its metrics. It propagates an
// incoming X-Request-ID or assigns one.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals("request_id", reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route, method := RouteLabel(c)
		elapsed := time.Since(start)
		metrics.RecordRequest(route, method, status, elapsed)

		logger.Info("request",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("route", route),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		)
		return err
	}
}
