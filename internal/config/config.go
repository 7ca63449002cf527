package config

type Config struct {
	ScriptPath      string
	AudioDir        string
	OutputVideo     string
	RosterPath      string
	Width           int
	Height          int
	FPS             int
	Workers         int
	SilenceDuration float64
	EnvelopeScale   float64
	MouthScale      float64
	MouthMaxGap     int
	Subtitles       bool
	VideoEncoder    string
	Quality         int
	ShowStats       bool
	BuildVersion    string
}

type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	FrameCount    int
	AudioPath     string
	SegmentIndex  int
}
