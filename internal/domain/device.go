package domain

type DeviceKind string

const (
	KindAudioInput DeviceKind = "audioinput"
	KindVideoInput DeviceKind = "videoinput"
)

// CommunicationsDeviceID is the reserved pseudo-device some platforms report
// next to the real ones. It is never offered for selection.
const CommunicationsDeviceID = "communications"

type Device struct {
	DeviceID string     `json:"deviceId"`
	Kind     DeviceKind `json:"kind"`
	Label    string     `json:"label"`
}

// DeviceSelection holds the capture devices picked for one channel.
// A nil entry means nothing was selected for that kind.
type DeviceSelection struct {
	Microphone *Device `json:"microphone"`
	Camera     *Device `json:"camera"`
}
