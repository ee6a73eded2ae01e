package iqs5xx

// Default 7-bit bus address.
const DefaultAddr = 0x74

// Product numbers.
const (
	IQS525 = 52
	IQS550 = 40
	IQS572 = 58
)

const (
	regProductNumber  = 0x0000
	regGestureEvents0 = 0x000d

	regSystemControl0 = 0x0431
	regSystemControl1 = 0x0432

	regReportRateActive = 0x057a
	regSystemConfig0    = 0x058e
	regSystemConfig1    = 0x058f

	regXYConfig0   = 0x0669
	regXResolution = 0x066e
	regYResolution = 0x0670

	regSingleFingerGestures  = 0x06b7
	regMultiFingerGestures   = 0x06b8
	regTapTime               = 0x06b9
	regTapDistance           = 0x06bb
	regHoldTime              = 0x06bd
	regScrollInitialDistance = 0x06c8
	regScrollAngle           = 0x06ca
	regZoomInitialDistance   = 0x06cb
	regZoomConsecutive       = 0x06cd

	// Writing any byte here closes the communication window.
	regEndWindow = 0xeeee
)

// System control 0 bits.
const (
	ackReset  = 0b1 << 7
	autoATI   = 0b1 << 5
	alpReseed = 0b1 << 4
	reseed    = 0b1 << 3
)

// System control 1 bits.
const (
	softReset = 0b1 << 1
	suspend   = 0b1 << 0
)

// System config 0 bits.
const (
	ManualControl = 0b1 << 7
	SetupComplete = 0b1 << 6
	Watchdog      = 0b1 << 5
	ALPReATI      = 0b1 << 3
	ReATI         = 0b1 << 2
)

// System config 1 bits.
const (
	ProxEvent    = 0b1 << 7
	TouchEvent   = 0b1 << 6
	SnapEvent    = 0b1 << 5
	ReATIEvent   = 0b1 << 3
	TPEvent      = 0b1 << 2
	GestureEvent = 0b1 << 1
	EventMode    = 0b1 << 0
)

// XY config 0 bits. Rotation is done by the host, so these are
// normally left clear.
const (
	FlipX      = 0b1 << 0
	FlipY      = 0b1 << 1
	SwitchXY   = 0b1 << 2
	PalmReject = 0b1 << 3
)

// Single finger gesture enable bits.
const (
	EnableTap          = 0b1 << 0
	EnablePressAndHold = 0b1 << 1
	EnableSwipeXNeg    = 0b1 << 2
	EnableSwipeXPos    = 0b1 << 3
	EnableSwipeYPos    = 0b1 << 4
	EnableSwipeYNeg    = 0b1 << 5
)

// Multi finger gesture enable bits.
const (
	EnableTwoFingerTap = 0b1 << 0
	EnableScroll       = 0b1 << 1
	EnableZoom         = 0b1 << 2
)
