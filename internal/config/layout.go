package config

type LayoutSettings struct {
	RequestSplit  float64 `json:"request_split"  toml:"request_split"`
	HeadersHeight float64 `json:"headers_height" toml:"headers_height"`
}

const (
	LayoutRequestSplitDefault  = 0.42
	LayoutRequestSplitMin      = 0.25
	LayoutRequestSplitMax      = 0.75
	LayoutHeadersHeightDefault = 0.3
	LayoutHeadersHeightMin     = 0.1
	LayoutHeadersHeightMax     = 0.7
)

func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		RequestSplit:  LayoutRequestSplitDefault,
		HeadersHeight: LayoutHeadersHeightDefault,
	}
}

// NormaliseLayoutSettings replaces zero values with defaults and clamps the
// rest into their allowed ranges.
func NormaliseLayoutSettings(in LayoutSettings) LayoutSettings {
	return LayoutSettings{
		RequestSplit: clampFloat(
			in.RequestSplit,
			LayoutRequestSplitMin,
			LayoutRequestSplitMax,
			LayoutRequestSplitDefault,
		),
		HeadersHeight: clampFloat(
			in.HeadersHeight,
			LayoutHeadersHeightMin,
			LayoutHeadersHeightMax,
			LayoutHeadersHeightDefault,
		),
	}
}

func clampFloat[T ~float64](value, min, max, fallback T) T {
	if value == 0 {
		return fallback
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
