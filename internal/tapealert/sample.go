package tapealert

import (
	"fmt"
	"os"
)

// SampleText mirrors a tapeinfo dump from a drive with several flags
// raised. It backs test mode, which exists so operators can validate
// logging, email, and the calling daemon's alert handling without a drive
// in a faulted state.
const SampleText = `Product Type: Tape Drive
Vendor ID: 'STK     '
Product ID: 'T10000B         '
Revision: '0107'
Attached Changer API: No
SerialNumber: 'XYZZY_B1  '
TapeAlert[1]:          Read: Having problems reading (slowing down).
TapeAlert[2]:         Write: Having problems writing (losing capacity).
TapeAlert[3]:    Hard Error: Uncorrectable read/write error.
TapeAlert[5]:  Read Failure: Tape faulty or tape drive broken.
TapeAlert[13]:  Snapped Tape: The data cartridge contains a broken tape.
TapeAlert[20]:     Clean Now: The tape drive neads cleaning NOW.
TapeAlert[21]: Clean Periodic:The tape drive needs to be cleaned at next opportunity.
MinBlock: 1
MaxBlock: 2097152
SCSI ID: 9
SCSI LUN: 0
Ready: yes
BufferedMode: yes
Medium Type: 0x58
Density Code: 0x58
BlockSize: 0
DataCompEnabled: yes
DataCompCapable: yes
DataDeCompEnabled: yes
CompType: 0xff
DeCompType: 0xff
`

// LoadSample returns the test-mode diagnostic text: the file at path when
// one is configured, otherwise the built-in SampleText.
func LoadSample(path string) (string, error) {
	if path == "" {
		return SampleText, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading sample text %s: %w", path, err)
	}
	return string(data), nil
}
