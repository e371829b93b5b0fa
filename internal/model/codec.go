package model

type Base64Request struct {
	Text    string `json:"text,omitempty"`
	Input   string `json:"input,omitempty"`
	URLSafe bool   `json:"urlSafe"`
}

type Base64Result struct {
	Output      string `json:"output"`
	Mode        string `json:"mode"`
	InputBytes  int    `json:"inputBytes"`
	OutputBytes int    `json:"outputBytes"`
	ValidUTF8   bool   `json:"validUtf8"`
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}
