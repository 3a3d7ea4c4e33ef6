package models

import "time"

const IdempotencyStatusOK = 200

type IdempotencyRecord struct {
	Key            string
	ResponseStatus int
	ResponseBody   string
	CreatedAt      time.Time
}
