package model

// TimestampCandidate is the detected interpretation of a digit string.
// Multiplier converts the value to milliseconds.
type TimestampCandidate struct {
	Digits      string  `json:"digits"`
	Format      string  `json:"format"`
	DisplayName string  `json:"displayName"`
	Multiplier  float64 `json:"multiplier"`
	Warning     string  `json:"warning,omitempty"`
}

type EpochToHumanRequest struct {
	Timestamp string `json:"timestamp"`
}

type EpochConversion struct {
	Detected  TimestampCandidate `json:"detected"`
	LocalTime string             `json:"localTime"`
	UTCTime   string             `json:"utcTime"`
	ISOTime   string             `json:"isoTime"`
	Unix      int64              `json:"unix"`
	JS        int64              `json:"js"`
	Micro     int64              `json:"micro"`
	Nano      string             `json:"nano"`
}

type EpochFromHumanRequest struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

type HumanConversion struct {
	Timezone string `json:"timezone"`
	ISOTime  string `json:"isoTime"`
	UTCTime  string `json:"utcTime"`
	Unix     int64  `json:"unix"`
	JS       int64  `json:"js"`
	Micro    int64  `json:"micro"`
	Nano     string `json:"nano"`
}

type CurrentTime struct {
	Unix    int64  `json:"unix"`
	JS      int64  `json:"js"`
	ISOTime string `json:"isoTime"`
	UTCTime string `json:"utcTime"`
}
