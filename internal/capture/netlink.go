package capture

import (
	"fmt"
	"net"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"
)

// nl80211 command and attribute constants, from <linux/nl80211.h>. Only the
// subset the hopper needs is declared.
const (
	nl80211CmdSetWiphy = 2

	nl80211AttrIfindex          = 3
	nl80211AttrWiphyFreq        = 38
	nl80211AttrWiphyChannelType = 39

	nl80211ChanNoHT      = 0
	nl80211ChanHT20      = 1
	nl80211ChanHT40Minus = 2
	nl80211ChanHT40Plus  = 3
)

// NL80211 is the ChannelControl backed by the nl80211 generic-netlink
// family. One connection is shared by every hopper; the kernel serializes
// SET_WIPHY per wiphy.
type NL80211 struct {
	conn   *genetlink.Conn
	family genetlink.Family
}

// NewNL80211 dials generic netlink and resolves the nl80211 family.
func NewNL80211() (*NL80211, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("dialing generic netlink: %w", err)
	}
	family, err := conn.GetFamily("nl80211")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("resolving nl80211 family: %w", err)
	}
	return &NL80211{conn: conn, family: family}, nil
}

func (c *NL80211) ChannelToFreq(channel int) (int, error) {
	return ChannelToFrequency(channel)
}

// Set issues NL80211_CMD_SET_WIPHY for iface with the given frequency and
// channel type.
func (c *NL80211) Set(iface string, freqMHz int, mode HTMode) error {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return fmt.Errorf("interface %s: %w", iface, err)
	}

	chanType := uint32(nl80211ChanNoHT)
	switch mode {
	case HTMode20:
		chanType = nl80211ChanHT20
	case HTMode40Minus:
		chanType = nl80211ChanHT40Minus
	case HTMode40Plus:
		chanType = nl80211ChanHT40Plus
	}

	ae := netlink.NewAttributeEncoder()
	ae.Uint32(nl80211AttrIfindex, uint32(ifi.Index))
	ae.Uint32(nl80211AttrWiphyFreq, uint32(freqMHz))
	ae.Uint32(nl80211AttrWiphyChannelType, chanType)
	data, err := ae.Encode()
	if err != nil {
		return fmt.Errorf("encoding nl80211 attributes: %w", err)
	}

	req := genetlink.Message{
		Header: genetlink.Header{Command: nl80211CmdSetWiphy},
		Data:   data,
	}
	if _, err := c.conn.Execute(req, c.family.ID, netlink.Request|netlink.Acknowledge); err != nil {
		return fmt.Errorf("nl80211 set wiphy %s freq=%d: %w", iface, freqMHz, err)
	}
	return nil
}

func (c *NL80211) Close() error { return c.conn.Close() }

// InterfaceUp brings iface administratively up via SIOCSIFFLAGS before a
// sniffer is opened on it.
func InterfaceUp(iface string) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("opening control socket: %w", err)
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(iface)
	if err != nil {
		return fmt.Errorf("interface %s: %w", iface, err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return fmt.Errorf("reading flags of %s: %w", iface, err)
	}
	flags := ifr.Uint16()
	if flags&unix.IFF_UP != 0 {
		return nil
	}
	ifr.SetUint16(flags | unix.IFF_UP)
	if err := unix.IoctlIfreq(fd, unix.SIOCSIFFLAGS, ifr); err != nil {
		return fmt.Errorf("bringing %s up: %w", iface, err)
	}
	return nil
}
