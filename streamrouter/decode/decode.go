// Package decode turns the positional JSON arrays Cortex sends for each
// stream type into typed Go samples. Every decoder tolerates trailing
// extra array elements (a firmware update that appends a field should
// not break decoding) but fails with a *cortexerr.ProtocolError when a
// documented-required element is missing.
package decode

import (
	"encoding/json"
	"fmt"

	"github.com/emotiv-community/cortex-go/cortexerr"
	"github.com/emotiv-community/cortex-go/headset"
)

// EEGSample is one row of raw EEG data: a monotonic hardware counter,
// whether the sample was interpolated to fill a dropped reading, one
// voltage reading per channel (ordered per the headset's Model), the
// raw (uncalibrated) contact quality, and a hardware marker value.
type EEGSample struct {
	Counter        float64
	Interpolated   float64
	Channels       map[string]float64
	RawCQ          float64
	MarkerHardware float64
}

// DecodeEEG decodes a Cortex "eeg" array:
// [counter, interpolated, ch0..chN-1, rawCQ, markerHardware].
func DecodeEEG(arr []json.RawMessage, model headset.Model) (EEGSample, error) {
	n := model.EEGChannelCount()
	want := n + 4 // counter, interpolated, n channels, rawCQ, markerHardware
	if len(arr) < want {
		return EEGSample{}, cortexerr.NewProtocolError(fmt.Sprintf("eeg array has %d elements, want at least %d", len(arr), want))
	}

	counter, err := float(arr[0])
	if err != nil {
		return EEGSample{}, err
	}
	interpolated, err := float(arr[1])
	if err != nil {
		return EEGSample{}, err
	}

	channels := make(map[string]float64, n)
	for i, name := range model.EEGChannels {
		v, err := float(arr[i+2])
		if err != nil {
			return EEGSample{}, err
		}
		channels[name] = v
	}

	rawCQ, err := float(arr[n+2])
	if err != nil {
		return EEGSample{}, err
	}
	marker, err := float(arr[n+3])
	if err != nil {
		return EEGSample{}, err
	}

	return EEGSample{
		Counter:        counter,
		Interpolated:   interpolated,
		Channels:       channels,
		RawCQ:          rawCQ,
		MarkerHardware: marker,
	}, nil
}

// MotionSample is one row of the 9-axis motion stream: gyroscope,
// accelerometer, and magnetometer, each in X/Y/Z.
type MotionSample struct {
	Counter float64
	GyroX, GyroY, GyroZ float64
	AccX, AccY, AccZ    float64
	MagX, MagY, MagZ    float64
}

// DecodeMotion decodes a Cortex "mot" array:
// [counter, gyroX, gyroY, gyroZ, accX, accY, accZ, magX, magY, magZ].
func DecodeMotion(arr []json.RawMessage) (MotionSample, error) {
	const want = 10
	if len(arr) < want {
		return MotionSample{}, cortexerr.NewProtocolError(fmt.Sprintf("mot array has %d elements, want at least %d", len(arr), want))
	}
	vals, err := floats(arr[:want])
	if err != nil {
		return MotionSample{}, err
	}
	return MotionSample{
		Counter: vals[0],
		GyroX:   vals[1], GyroY: vals[2], GyroZ: vals[3],
		AccX: vals[4], AccY: vals[5], AccZ: vals[6],
		MagX: vals[7], MagY: vals[8], MagZ: vals[9],
	}, nil
}

// DeviceSample reports headset battery and per-channel contact quality.
type DeviceSample struct {
	BatteryPercent float64
	SignalStrength float64
	ChannelQuality map[string]float64
	OverallQuality float64
}

// DecodeDevice decodes a Cortex "dev" array:
// [batteryPercent, signalStrength, [ch0Quality..chN-1Quality], overallQuality].
func DecodeDevice(arr []json.RawMessage, model headset.Model) (DeviceSample, error) {
	if len(arr) < 4 {
		return DeviceSample{}, cortexerr.NewProtocolError(fmt.Sprintf("dev array has %d elements, want at least 4", len(arr)))
	}
	battery, err := float(arr[0])
	if err != nil {
		return DeviceSample{}, err
	}
	signal, err := float(arr[1])
	if err != nil {
		return DeviceSample{}, err
	}

	var qualities []json.RawMessage
	if err := json.Unmarshal(arr[2], &qualities); err != nil {
		return DeviceSample{}, cortexerr.NewProtocolError("dev array element 2 is not a quality array: " + err.Error())
	}
	channelQuality := make(map[string]float64, len(qualities))
	for i, name := range model.QualityChannels {
		if i >= len(qualities) {
			break
		}
		v, err := float(qualities[i])
		if err != nil {
			return DeviceSample{}, err
		}
		channelQuality[name] = v
	}

	overall, err := float(arr[3])
	if err != nil {
		return DeviceSample{}, err
	}

	return DeviceSample{BatteryPercent: battery, SignalStrength: signal, ChannelQuality: channelQuality, OverallQuality: overall}, nil
}

// PowerSample holds band-power values per channel per frequency band.
type PowerSample struct {
	// Bands maps channel name -> band name -> power.
	Bands map[string]map[string]float64
}

var powerBandNames = []string{"theta", "alpha", "lowBeta", "highBeta", "gamma"}

// DecodePower decodes a Cortex "pow" array: 5 band values per EEG
// channel, flattened channel-major (ch0.theta, ch0.alpha, ..., ch1.theta, ...).
func DecodePower(arr []json.RawMessage, model headset.Model) (PowerSample, error) {
	n := model.EEGChannelCount()
	want := n * len(powerBandNames)
	if len(arr) < want {
		return PowerSample{}, cortexerr.NewProtocolError(fmt.Sprintf("pow array has %d elements, want at least %d", len(arr), want))
	}

	bands := make(map[string]map[string]float64, n)
	for ci, ch := range model.EEGChannels {
		chBands := make(map[string]float64, len(powerBandNames))
		for bi, band := range powerBandNames {
			v, err := float(arr[ci*len(powerBandNames)+bi])
			if err != nil {
				return PowerSample{}, err
			}
			chBands[band] = v
		}
		bands[ch] = chBands
	}
	return PowerSample{Bands: bands}, nil
}

// MetricsSample holds Cortex's seven performance-metric readings.
type MetricsSample struct {
	Engagement, Excitement, LongTermExcitement float64
	Stress, Relaxation, Interest, Focus        float64
}

// DecodeMetrics decodes a Cortex "met" array:
// [engagement, excitement, longTermExcitement, stress, relaxation, interest, focus].
func DecodeMetrics(arr []json.RawMessage) (MetricsSample, error) {
	const want = 7
	if len(arr) < want {
		return MetricsSample{}, cortexerr.NewProtocolError(fmt.Sprintf("met array has %d elements, want at least %d", len(arr), want))
	}
	vals, err := floats(arr[:want])
	if err != nil {
		return MetricsSample{}, err
	}
	return MetricsSample{
		Engagement: vals[0], Excitement: vals[1], LongTermExcitement: vals[2],
		Stress: vals[3], Relaxation: vals[4], Interest: vals[5], Focus: vals[6],
	}, nil
}

// CommandSample reports the dominant trained mental command and its
// power (0..1).
type CommandSample struct {
	Action string
	Power  float64
}

// DecodeCommand decodes a Cortex "com" array: [action, power].
func DecodeCommand(arr []json.RawMessage) (CommandSample, error) {
	if len(arr) < 2 {
		return CommandSample{}, cortexerr.NewProtocolError(fmt.Sprintf("com array has %d elements, want at least 2", len(arr)))
	}
	var action string
	if err := json.Unmarshal(arr[0], &action); err != nil {
		return CommandSample{}, cortexerr.NewProtocolError("com array element 0 is not a string: " + err.Error())
	}
	power, err := float(arr[1])
	if err != nil {
		return CommandSample{}, err
	}
	return CommandSample{Action: action, Power: power}, nil
}

// FacialSample reports Cortex's upper- and lower-face expression
// classification and their strengths.
type FacialSample struct {
	EyeAction   string
	UpperAction string
	UpperPower  float64
	LowerAction string
	LowerPower  float64
}

// DecodeFacial decodes a Cortex "fac" array:
// [eyeAction, upperAction, upperPower, lowerAction, lowerPower].
func DecodeFacial(arr []json.RawMessage) (FacialSample, error) {
	if len(arr) < 5 {
		return FacialSample{}, cortexerr.NewProtocolError(fmt.Sprintf("fac array has %d elements, want at least 5", len(arr)))
	}
	var eye, upper, lower string
	if err := json.Unmarshal(arr[0], &eye); err != nil {
		return FacialSample{}, cortexerr.NewProtocolError("fac array element 0 is not a string: " + err.Error())
	}
	if err := json.Unmarshal(arr[1], &upper); err != nil {
		return FacialSample{}, cortexerr.NewProtocolError("fac array element 1 is not a string: " + err.Error())
	}
	upperPower, err := float(arr[2])
	if err != nil {
		return FacialSample{}, err
	}
	if err := json.Unmarshal(arr[3], &lower); err != nil {
		return FacialSample{}, cortexerr.NewProtocolError("fac array element 3 is not a string: " + err.Error())
	}
	lowerPower, err := float(arr[4])
	if err != nil {
		return FacialSample{}, err
	}
	return FacialSample{EyeAction: eye, UpperAction: upper, UpperPower: upperPower, LowerAction: lower, LowerPower: lowerPower}, nil
}

// QualitySample reports per-channel contact quality on the same 0..4
// scale as the dev stream, without battery/signal fields.
type QualitySample struct {
	ChannelQuality map[string]float64
	OverallQuality float64
}

// DecodeQuality decodes a Cortex "eq" array: [[ch0Quality..chN-1Quality], overallQuality].
func DecodeQuality(arr []json.RawMessage, model headset.Model) (QualitySample, error) {
	if len(arr) < 2 {
		return QualitySample{}, cortexerr.NewProtocolError(fmt.Sprintf("eq array has %d elements, want at least 2", len(arr)))
	}
	var qualities []json.RawMessage
	if err := json.Unmarshal(arr[0], &qualities); err != nil {
		return QualitySample{}, cortexerr.NewProtocolError("eq array element 0 is not a quality array: " + err.Error())
	}
	channelQuality := make(map[string]float64, len(qualities))
	for i, name := range model.QualityChannels {
		if i >= len(qualities) {
			break
		}
		v, err := float(qualities[i])
		if err != nil {
			return QualitySample{}, err
		}
		channelQuality[name] = v
	}
	overall, err := float(arr[1])
	if err != nil {
		return QualitySample{}, err
	}
	return QualitySample{ChannelQuality: channelQuality, OverallQuality: overall}, nil
}

func float(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, cortexerr.NewProtocolError("expected numeric array element: " + err.Error())
	}
	return v, nil
}

func floats(arr []json.RawMessage) ([]float64, error) {
	out := make([]float64, len(arr))
	for i, raw := range arr {
		v, err := float(raw)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
