//go:build linux

package hidraw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// USBIDPaths lists where the USB ID database is usually installed.
var USBIDPaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/var/lib/usbutils/usb.ids",
	"/usr/share/misc/usb.ids",
}

// Names looks up the vendor and product names of i in the first USB ID
// database found in paths, or in USBIDPaths when none are given. Unknown
// IDs yield empty strings.
func (i Info) Names(paths ...string) (vendor, product string) {
	if len(paths) == 0 {
		paths = USBIDPaths
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		defer f.Close()
		return lookupNames(f, i.Vendor, i.Product)
	}
	return "", ""
}

// lookupNames scans a usb.ids stream for one vendor and product. Vendor
// lines are "vvvv  name"; their product lines follow as "\tpppp  name".
func lookupNames(r io.Reader, vid, pid uint16) (vendor, product string) {
	sc := bufio.NewScanner(r)
	inVendor := false
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] != '\t' {
			if inVendor {
				return vendor, ""
			}
			id, name, ok := parseIDLine(line)
			if ok && id == vid {
				inVendor = true
				vendor = name
			}
			continue
		}
		if !inVendor || strings.HasPrefix(line, "\t\t") {
			continue
		}
		if id, name, ok := parseIDLine(line[1:]); ok && id == pid {
			return vendor, name
		}
	}
	return vendor, ""
}

func parseIDLine(line string) (uint16, string, bool) {
	if len(line) < 6 || line[4] != ' ' {
		return 0, "", false
	}
	id, err := strconv.ParseUint(line[:4], 16, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(id), strings.TrimSpace(line[5:]), true
}
