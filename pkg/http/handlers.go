package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/models"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zconst"
	"github.com/Oudwins/zog/zhttp"
)

const (
	contextKeySensorID = "sensor_id"

	MessageReadingInserted = "Reading inserted"
	MessageMissingValue    = "Missing 'value' in query string or JSON body"
	MessageInvalidValue    = "Invalid 'value', it must be a number"
	MessageRateLimited     = "rate limit exceeded"
)

// HTML first, so browsers and clients without an Accept header get the page.
var offeredFormats = []string{gin.MIMEHTML, gin.MIMEJSON}

func handlerLogger(c *gin.Context) *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameRestfulServer,
		zap.String(common.LoggerFieldRequestID, c.GetString(common.ContextKeyRequestID)),
	)
}

func (rs *RestfulServer) renderError(c *gin.Context, status int, err error) {
	handlerLogger(c).Error("Request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)

	c.Negotiate(status, gin.Negotiate{
		Offered:  offeredFormats,
		HTMLName: "error.tmpl",
		Data:     gin.H{"error": err.Error()},
	})
}

func (rs *RestfulServer) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"title":    "Sensor API",
		"greeting": "Hello, World!",
	})
}

func (rs *RestfulServer) About(c *gin.Context) {
	sensors, err := rs.Sensors.Sensor.ListSensors(c.Request.Context())
	if err != nil {
		rs.renderError(c, http.StatusInternalServerError, err)
		return
	}

	if sensors == nil {
		sensors = []models.Sensor{}
	}

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  offeredFormats,
		HTMLName: "about.tmpl",
		HTMLData: gin.H{"title": "About", "sensors": sensors},
		JSONData: gin.H{"sensors": sensors},
	})
}

// GetSensorData is the database ping: it answers with the most recent reading, if any.
func (rs *RestfulServer) GetSensorData(c *gin.Context) {
	reading, err := rs.Sensors.Reading.GetLastReading(c.Request.Context())
	if err != nil {
		handlerLogger(c).Error("Failed to fetch sensor data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sensor_data": reading})
}

type ReadingRequest struct {
	Value float64 `json:"value"`
}

var readingRequestSchema = z.Struct(z.Shape{
	"value": z.Float64().Required(),
})

// parseReadingRequest reads value from the body picked by Content-Type, then from the query
// string when the body has none. The returned message is empty on success.
func parseReadingRequest(r *http.Request) (ReadingRequest, string) {
	var req ReadingRequest
	errs := readingRequestSchema.Parse(zhttp.Request(r), &req)
	if errs == nil {
		return req, ""
	}
	if !isMissingValue(errs) {
		return req, MessageInvalidValue
	}

	req = ReadingRequest{}
	errs = readingRequestSchema.Parse(zhttp.Config.Parsers.Query(r), &req)
	switch {
	case errs == nil:
		return req, ""
	case isMissingValue(errs):
		return req, MessageMissingValue
	default:
		return req, MessageInvalidValue
	}
}

// isMissingValue tells absence (no field, null, empty string, unreadable body) apart from a
// value that is there but not a number.
func isMissingValue(errs z.ZogIssueMap) bool {
	for _, issue := range errs["value"] {
		if issue.Code != zconst.IssueCodeRequired && issue.Value != "" {
			return false
		}
	}
	return true
}

func (rs *RestfulServer) PostReading(c *gin.Context) {
	sensorID := c.GetInt(contextKeySensorID)

	req, errMessage := parseReadingRequest(c.Request)
	if errMessage != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMessage})
		return
	}

	if !rs.RateLimiterStore.Allow(sensorID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": MessageRateLimited})
		return
	}

	if _, err := rs.Sensors.Reading.InsertReading(c.Request.Context(), sensorID, req.Value); err != nil {
		handlerLogger(c).Error("Failed to insert reading", zap.Int("sensor_id", sensorID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rs.Metrics.ReadingInserted()

	c.JSON(http.StatusCreated, gin.H{
		"message":   MessageReadingInserted,
		"sensor_id": sensorID,
		"value":     req.Value,
	})
}

// SensorView is what GET /sensor/:sensor_id renders, oldest reading first.
type SensorView struct {
	SensorID   int              `json:"sensor_id"`
	Values     []float64        `json:"values"`
	Timestamps []string         `json:"timestamps"`
	Rows       []models.Reading `json:"rows"`
}

func NewSensorView(sensorID int, readings []models.Reading) SensorView {
	if readings == nil {
		readings = []models.Reading{}
	}

	return SensorView{
		SensorID: sensorID,
		Values:   common.Mapper(readings, func(r models.Reading) float64 { return r.Value }),
		Timestamps: common.Mapper(readings, func(r models.Reading) string {
			return r.CreatedAt.Format(common.ReadingTimestampLayout)
		}),
		Rows: readings,
	}
}

func (rs *RestfulServer) GetReadings(c *gin.Context) {
	sensorID := c.GetInt(contextKeySensorID)

	readings, err := rs.Sensors.Reading.GetLatestReadings(c.Request.Context(), sensorID)
	if err != nil {
		rs.renderError(c, http.StatusInternalServerError, err)
		return
	}

	view := NewSensorView(sensorID, readings)

	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  offeredFormats,
		HTMLName: "sensor.tmpl",
		HTMLData: gin.H{"title": view.SensorTitle(), "view": view},
		JSONData: view,
	})
}

func (v SensorView) SensorTitle() string {
	return models.NewSensor(v.SensorID).Name
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
