package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteFeatureValue records a feature value change.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteFeatureValue("avc_volume", -10)
func (c *Client) WriteFeatureValue(feature string, value int32) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"feature_values",
		map[string]string{
			"feature": feature,
		},
		map[string]interface{}{
			"value": int64(value),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
