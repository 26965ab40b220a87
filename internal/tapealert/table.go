package tapealert

// Severity classifies a TapeAlert flag per the SSC TapeAlert specification.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// TapeAlert log page flag numbers run 1-64. Numbers outside this range are
// not valid flags and are skipped by the extractor.
const (
	MinCode = 1
	MaxCode = 64
)

// Flag is one entry of the TapeAlert reference table.
type Flag struct {
	Code        int      `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

type flagInfo struct {
	name        string
	description string
	severity    Severity
}

// table holds the standard meaning of each flag. Built once; never mutated.
// Codes 47-49 and 59-64 are reserved in SSC but still valid flag numbers,
// so they stay in the table.
var table = map[int]flagInfo{
	1:  {"Read Warning", "The drive is having problems reading data; no data has been lost, but performance may be reduced.", SeverityWarning},
	2:  {"Write Warning", "The drive is having problems writing data; no data has been lost, but media capacity may be reduced.", SeverityWarning},
	3:  {"Hard Error", "The operation has stopped because an uncorrectable read or write error occurred.", SeverityWarning},
	4:  {"Media", "Data on this cartridge is at risk; copy any data you require and discard the cartridge.", SeverityCritical},
	5:  {"Read Failure", "The tape is damaged or the drive is faulty.", SeverityCritical},
	6:  {"Write Failure", "The tape is from a faulty batch or the drive is faulty.", SeverityCritical},
	7:  {"Media Life", "The tape cartridge has reached the end of its calculated useful life.", SeverityWarning},
	8:  {"Not Data Grade", "The cartridge is not data-grade; any data written to it is at risk.", SeverityWarning},
	9:  {"Write Protect", "A write operation was attempted on a write-protected cartridge.", SeverityCritical},
	10: {"No Removal", "Eject was requested while the drive was actively using the cartridge.", SeverityInfo},
	11: {"Cleaning Media", "The tape in the drive is a cleaning cartridge.", SeverityInfo},
	12: {"Unsupported Format", "The tape is of a format the drive does not support.", SeverityWarning},
	13: {"Recoverable Snapped Tape", "The data cartridge contains a broken tape; the drive can still eject it.", SeverityCritical},
	14: {"Unrecoverable Snapped Tape", "The data cartridge contains a broken tape that the drive cannot eject.", SeverityCritical},
	15: {"Memory Chip In Cartridge Failure", "The memory in the tape cartridge has failed, which reduces performance.", SeverityWarning},
	16: {"Forced Eject", "The data cartridge was manually ejected while the drive was reading or writing.", SeverityCritical},
	17: {"Read Only Format", "A cartridge of a read-only format was loaded.", SeverityWarning},
	18: {"Tape Directory Corrupted On Load", "The tape directory on the cartridge was corrupted; file search performance is degraded.", SeverityWarning},
	19: {"Nearing Media Life", "The data cartridge is nearing the end of its calculated life.", SeverityInfo},
	20: {"Clean Now", "The tape drive needs cleaning now.", SeverityCritical},
	21: {"Clean Periodic", "The tape drive needs to be cleaned at the next opportunity.", SeverityWarning},
	22: {"Expired Cleaning Media", "The cleaning cartridge has expired.", SeverityCritical},
	23: {"Invalid Cleaning Tape", "The last cleaning attempt used an invalid cleaning cartridge.", SeverityCritical},
	24: {"Retension Requested", "The drive has requested a retension operation.", SeverityWarning},
	25: {"Dual-Port Interface Error", "A redundant interface port on the drive has failed.", SeverityWarning},
	26: {"Cooling Fan Failure", "A cooling fan in the drive enclosure has failed.", SeverityWarning},
	27: {"Power Supply Failure", "A redundant power supply in the drive enclosure has failed.", SeverityWarning},
	28: {"Power Consumption", "The drive's power consumption is outside the specified range.", SeverityWarning},
	29: {"Drive Maintenance", "Preventive maintenance of the drive is required.", SeverityWarning},
	30: {"Hardware A", "The drive has a hardware fault that requires a reset to recover.", SeverityCritical},
	31: {"Hardware B", "The drive has a hardware fault that requires a power cycle to recover.", SeverityCritical},
	32: {"Interface", "A problem was identified with the drive's host interface.", SeverityWarning},
	33: {"Eject Media", "An error occurred that requires the cartridge to be ejected and reinserted.", SeverityCritical},
	34: {"Download Fail", "A firmware download to the drive failed.", SeverityWarning},
	35: {"Drive Humidity", "Humidity inside the drive is outside the specified operating range.", SeverityWarning},
	36: {"Drive Temperature", "Temperature inside the drive is outside the specified operating range.", SeverityWarning},
	37: {"Drive Voltage", "Supply voltage to the drive is outside the specified range.", SeverityWarning},
	38: {"Predictive Failure", "A hardware failure of the drive is predicted.", SeverityCritical},
	39: {"Diagnostics Required", "The drive may have a hardware fault; run extended diagnostics to verify.", SeverityWarning},
	40: {"Loader Hardware A", "The changer mechanism is having difficulty communicating with the drive.", SeverityCritical},
	41: {"Loader Stray Tape", "A tape was left in the loader by a previous hardware fault.", SeverityCritical},
	42: {"Loader Hardware B", "There is a problem with the automation loader mechanism.", SeverityWarning},
	43: {"Loader Door", "The operation failed because the loader door is open.", SeverityCritical},
	44: {"Loader Hardware C", "The loader mechanism has a hardware fault.", SeverityCritical},
	45: {"Loader Magazine", "There is a problem with the loader magazine.", SeverityCritical},
	46: {"Loader Predictive Failure", "A hardware failure of the loader mechanism is predicted.", SeverityWarning},
	47: {"Reserved", "Reserved for future use.", SeverityInfo},
	48: {"Reserved", "Reserved for future use.", SeverityInfo},
	49: {"Reserved", "Reserved for future use.", SeverityInfo},
	50: {"Lost Statistics", "Media statistics were lost at some point in the past.", SeverityWarning},
	51: {"Tape Directory Invalid At Unload", "The tape directory on the cartridge just unloaded was corrupted; file search performance is degraded.", SeverityWarning},
	52: {"Tape System Area Write Failure", "The tape just unloaded could not write its system area successfully.", SeverityCritical},
	53: {"Tape System Area Read Failure", "The tape system area could not be read successfully at load time.", SeverityCritical},
	54: {"No Start Of Data", "The start of data could not be found on the tape.", SeverityCritical},
	55: {"Loading Failure", "The operation failed because the cartridge cannot be loaded and threaded.", SeverityCritical},
	56: {"Unrecoverable Unload Failure", "The operation failed because the cartridge cannot be unloaded.", SeverityCritical},
	57: {"Automation Interface Failure", "The drive has identified a problem with the automation interface.", SeverityCritical},
	58: {"Firmware Failure", "The drive has reset itself due to a detected firmware fault.", SeverityWarning},
	59: {"Reserved", "Reserved for future use.", SeverityInfo},
	60: {"Reserved", "Reserved for future use.", SeverityInfo},
	61: {"Reserved", "Reserved for future use.", SeverityInfo},
	62: {"Reserved", "Reserved for future use.", SeverityInfo},
	63: {"Reserved", "Reserved for future use.", SeverityInfo},
	64: {"Reserved", "Reserved for future use.", SeverityInfo},
}

// Lookup returns the reference table entry for a flag number.
func Lookup(code int) (Flag, bool) {
	fi, ok := table[code]
	if !ok {
		return Flag{}, false
	}
	return Flag{Code: code, Name: fi.name, Description: fi.description, Severity: fi.severity}, true
}

// Flags returns the full reference table in ascending code order.
func Flags() []Flag {
	flags := make([]Flag, 0, len(table))
	for code := MinCode; code <= MaxCode; code++ {
		if f, ok := Lookup(code); ok {
			flags = append(flags, f)
		}
	}
	return flags
}
