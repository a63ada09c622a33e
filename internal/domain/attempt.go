package domain

import "time"

type Attempt struct {
	IP        string
	URL       string
	Timestamp time.Time
}
