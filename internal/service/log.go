package service

import (
	"encoding/json"
	"log"
	"time"
)

func logDiscardFailure(key string, err error) {
	logJSON(map[string]any{
		"level":     "error",
		"component": "service",
		"event":     "object_rollback_failed",
		"key":       key,
		"error":     err.Error(),
	})
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal service log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
