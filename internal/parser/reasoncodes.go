package parser

// reasonCodes is the 67-entry (0..66) deauthentication reason-code table
// ("deauthentication: fixed.reason_code + its textual mapping"), following
// the IEEE 802.11 reason-code assignments.
var reasonCodes = map[int]string{
	0:  "Reserved",
	1:  "Unspecified reason",
	2:  "Previous authentication no longer valid",
	3:  "Deauthenticated because sending station is leaving (or has left) the BSS",
	4:  "Disassociated due to inactivity",
	5:  "Disassociated because AP is unable to handle all currently associated stations",
	6:  "Class 2 frame received from nonauthenticated STA",
	7:  "Class 3 frame received from nonassociated STA",
	8:  "Disassociated because sending station is leaving (or has left) the BSS",
	9:  "Station requesting (re)association is not authenticated with responding station",
	10: "Disassociated because the information in the Power Capability element is unacceptable",
	11: "Disassociated because the information in the Supported Channels element is unacceptable",
	12: "Disassociated due to BSS transition management",
	13: "Invalid element, i.e. an element defined in this standard for which the content does not meet the specifications",
	14: "Message integrity code (MIC) failure",
	15: "4-Way Handshake timeout",
	16: "Group Key Handshake timeout",
	17: "Element in 4-Way Handshake different from (Re)Association Request/Probe Response/Beacon frame",
	18: "Invalid group cipher",
	19: "Invalid pairwise cipher",
	20: "Invalid AKMP",
	21: "Unsupported RSN information element version",
	22: "Invalid RSN information element capabilities",
	23: "IEEE 802.1X authentication failed",
	24: "Cipher suite rejected because of the security policy",
	25: "TDLS direct-link teardown due to TDLS peer STA unreachable",
	26: "TDLS direct-link teardown for unspecified reason",
	27: "Disassociated because session terminated by SSP request",
	28: "Disassociated because of lack of SSP roaming agreement",
	29: "Requested service rejected because of SSP cipher suite or AKM requirement",
	30: "Requested service not authorized in this location",
	31: "TS deleted because QoS AP lacks sufficient bandwidth for this QoS STA",
	32: "Disassociated for unspecified, QoS-related reason",
	33: "Disassociated because QoS AP lacks sufficient bandwidth for this QoS STA",
	34: "Disassociated because of excessive number of frames that need to be acknowledged, but are not acknowledged due to AP transmissions and/or poor channel conditions",
	35: "Disassociated because STA is transmitting outside the limits of its TXOPs",
	36: "Requested from peer STA as the STA is leaving the BSS (or resetting)",
	37: "Requested from peer STA as it does not want to use the mechanism",
	38: "Requested from peer STA as the STA received frames using the mechanism for which a setup is required",
	39: "Requested from peer STA due to timeout",
	40: "Peer STA does not support the requested cipher suite",
	41: "Disassociated because authorized access limit reached",
	42: "Disassociated due to external service requirements",
	43: "Invalid FT action frame count",
	44: "Invalid pairwise master key identifier (PMKID)",
	45: "Invalid MDE",
	46: "Invalid FTE",
	47: "Mesh peering canceled for unknown reasons",
	48: "The mesh STA has reached the supported maximum number of peer mesh STAs",
	49: "The received information violates the Mesh Configuration policy configured in the mesh STA profile",
	50: "The mesh STA has received a Mesh Peering Close message requesting to close the mesh peering",
	51: "The mesh STA has re-sent dot11MeshMaxRetries Mesh Peering Open messages, without receiving a Mesh Peering Confirm message",
	52: "The confirmTimer for the mesh peering instance times out",
	53: "The mesh STA fails to unwrap the GTK or the values in the wrapped contents do not match",
	54: "The mesh STA receives inconsistent information about the mesh parameters between Mesh Peering Management frames",
	55: "The mesh STA fails the authenticated mesh peering exchange because of failure in selecting either the pairwise ciphersuite or group ciphersuite",
	56: "The mesh STA does not have proxy information for this external destination",
	57: "The mesh STA does not have forwarding information for this destination",
	58: "The mesh STA determines that the link to the next hop of an active path in its forwarding information is no longer usable",
	59: "The Deauthentication frame was sent because the MAC address of the STA already exists in the mesh BSS",
	60: "The mesh STA performs channel switching to meet regulatory requirements",
	61: "The mesh STA performs channel switching with unspecified reason",
	62: "Reserved",
	63: "Reserved",
	64: "Reserved",
	65: "Reserved",
	66: "Reserved",
}

func reasonCodeText(code int) string {
	if s, ok := reasonCodes[code]; ok {
		return s
	}
	return "Reserved"
}
