package parser

// statusCodes is the 104-entry (0..103) management status-code table,
// following the IEEE 802.11 status-code assignments. Entries the standard
// leaves unallocated are rendered "Reserved".
var statusCodes = map[int]string{
	0:   "Successful",
	1:   "Unspecified failure",
	2:   "TDLS wakeup schedule rejected but alternative schedule provided",
	3:   "TDLS wakeup schedule rejected",
	4:   "Reserved",
	5:   "Security disabled",
	6:   "Unacceptable lifetime",
	7:   "Not in same BSS",
	8:   "Reserved",
	9:   "Reserved",
	10:  "Refused because capabilities mismatch",
	11:  "Association denied, AP unable to handle additional associated STAs",
	12:  "Association denied due to requesting STA not supporting all of the data rates in BSSBasicRateSet",
	13:  "Association denied due to requesting STA not supporting the short preamble option",
	14:  "Association denied due to requesting STA not supporting the PBCC modulation option",
	15:  "Association denied due to requesting STA not supporting the channel agility option",
	16:  "Association request rejected because Spectrum Management capability is required",
	17:  "Association request rejected because the information in the Power Capability element is unacceptable",
	18:  "Association request rejected because the information in the Supported Channels element is unacceptable",
	19:  "Association denied due to requesting STA not supporting the short slot time option",
	20:  "Association denied due to requesting STA not supporting the DSSS-OFDM option",
	21:  "Association denied because the requesting STA does not support HT features",
	22:  "Reserved",
	23:  "R0KH unreachable",
	24:  "Association denied because the requesting STA does not support the PCO transition time required by the AP",
	25:  "Refused temporarily",
	26:  "Robust management frame policy violation",
	27:  "Unspecified, QoS-related failure",
	28:  "Association denied because QoS AP has insufficient bandwidth to handle another QoS STA",
	29:  "Association denied due to excessive frame loss rates and/or poor conditions on current operating channel",
	30:  "Association (with QoS BSS) denied because the requesting STA does not support the QoS facility",
	31:  "Reserved",
	32:  "The request has been declined",
	33:  "The request has not been successful as one or more parameters have invalid values",
	34:  "The allocation or TS has not been created because the request cannot be honored; a suggested TSPEC is provided",
	35:  "Invalid information element",
	36:  "Invalid group cipher",
	37:  "Invalid pairwise cipher",
	38:  "Invalid AKMP",
	39:  "Unsupported RSN information element version",
	40:  "Invalid RSN information element capabilities",
	41:  "Cipher suite rejected because of security policy",
	42:  "The TS has not been created; a suggested TSPEC is provided so another TS may be set with the suggested changes",
	43:  "Direct link is not allowed in the BSS by policy",
	44:  "The Destination STA is not present within this BSS",
	45:  "The Destination STA is not a QoS STA",
	46:  "Association denied because the ListenInterval is too large",
	47:  "Invalid FT action frame count",
	48:  "Invalid pairwise master key identifier (PMKID)",
	49:  "Invalid MDE",
	50:  "Invalid FTE",
	51:  "Requested TCLAS processing is not supported by the AP",
	52:  "The TCLAS processing request has been declined",
	53:  "The TS has not been created; an alternative TSPEC is provided so another TS may be set with the alternative TSPEC",
	54:  "The requested TS schedule conflicts with an existing schedule",
	55:  "Invalid information element",
	56:  "Reserved",
	57:  "Reserved",
	58:  "Reserved",
	59:  "Reserved",
	60:  "GAS Advertisement Protocol not supported",
	61:  "No outstanding GAS request",
	62:  "GAS Response not received from the Advertisement Server",
	63:  "STA timed out waiting for GAS Query response",
	64:  "GAS Response is larger than query response length limit",
	65:  "Request refused because home network does not support request",
	66:  "Advertisement Server in the network not currently reachable",
	67:  "Reserved",
	68:  "Request refused due to permission to access network denied",
	69:  "Request refused due to Advertisement Server rate limiting",
	70:  "Authentication failed on indicated FILS finite cyclic group",
	71:  "Authentication failed on indicated FILS authentication type",
	72:  "FILS authentication failed due to bad LT values",
	73:  "FILS authentication failed due to unsupported time sync function",
	74:  "Association denied because the listen interval is too large",
	75:  "Reserved",
	76:  "Reserved",
	77:  "Transmission failure",
	78:  "Requested TCLAS not supported",
	79:  "TCLAS resources exhausted",
	80:  "Rejected with suggested BSS transition",
	81:  "Reject with recommended schedule",
	82:  "Reject with alternative schedule",
	83:  "TS creation failed; the provided parameters did not conform to infrastructure requirements",
	84:  "PREQ not supported",
	85:  "Reserved",
	86:  "PREP not supported",
	87:  "PERR no proxy information available",
	88:  "PERR no forwarding information available",
	89:  "PERR destination unreachable",
	90:  "MAC address already exists in the mesh BSS",
	91:  "Mesh capability policy violation",
	92:  "MBCA violation",
	93:  "Mesh channel switch to meet regulatory requirements",
	94:  "Mesh channel switch with unspecified reason",
	95:  "Reserved",
	96:  "Reserved",
	97:  "Reserved",
	98:  "Reserved",
	99:  "Reserved",
	100: "Reserved",
	101: "Reserved",
	102: "Reserved",
	103: "Reserved",
}

func statusCodeText(code int) string {
	if s, ok := statusCodes[code]; ok {
		return s
	}
	return "Reserved"
}
