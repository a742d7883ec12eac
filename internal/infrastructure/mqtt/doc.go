// Package mqtt provides the MQTT state bus client for dacbroker.
//
// It wraps eclipse/paho.mqtt.golang with connection management, Last Will
// and Testament for offline detection, automatic reconnection with tracked
// re-subscription, and topic builders for the dacbroker namespace.
//
// # Topics
//
//	dacbroker/state/dac/{feature}    retained canonical feature values
//	dacbroker/command/dac/{feature}  set-value commands from other services
//	dacbroker/system/status          online/offline status (retained, LWT)
//
// The bus is optional (mqtt.enabled in config.yaml); the broker runs fully
// headless without it.
package mqtt
