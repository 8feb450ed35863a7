package gds

// Record types, as (record type << 8) | data type. The stream is a
// sequence of records: uint16 total length, uint8 record type, uint8
// data type, big-endian payload.
const (
	recHEADER   = 0x0002
	recBGNLIB   = 0x0102
	recLIBNAME  = 0x0206
	recUNITS    = 0x0305
	recENDLIB   = 0x0400
	recBGNSTR   = 0x0502
	recSTRNAME  = 0x0606
	recENDSTR   = 0x0700
	recBOUNDARY = 0x0800
	recPATH     = 0x0900
	recSREF     = 0x0A00
	recAREF     = 0x0B00
	recTEXT     = 0x0C00
	recLAYER    = 0x0D02
	recDATATYPE = 0x0E02
	recWIDTH    = 0x0F03
	recXY       = 0x1003
	recENDEL    = 0x1100
	recSNAME    = 0x1206
	recCOLROW   = 0x1302
	recNODE     = 0x1500
	recTEXTTYPE = 0x1602
	recSTRING   = 0x1906
	recSTRANS   = 0x1A01
	recMAG      = 0x1B05
	recANGLE    = 0x1C05
	recPATHTYPE = 0x2102
	recNODETYPE = 0x2A02
	recBOX      = 0x2D00
	recBOXTYPE  = 0x2E02
)

// STRANS flag bits.
const (
	stransReflect  = 0x8000
	stransAbsMag   = 0x0004
	stransAbsAngle = 0x0002
)

func recordName(id uint16) string {
	switch id {
	case recHEADER:
		return "HEADER"
	case recBGNLIB:
		return "BGNLIB"
	case recLIBNAME:
		return "LIBNAME"
	case recUNITS:
		return "UNITS"
	case recENDLIB:
		return "ENDLIB"
	case recBGNSTR:
		return "BGNSTR"
	case recSTRNAME:
		return "STRNAME"
	case recENDSTR:
		return "ENDSTR"
	case recBOUNDARY:
		return "BOUNDARY"
	case recPATH:
		return "PATH"
	case recSREF:
		return "SREF"
	case recAREF:
		return "AREF"
	case recTEXT:
		return "TEXT"
	case recLAYER:
		return "LAYER"
	case recDATATYPE:
		return "DATATYPE"
	case recWIDTH:
		return "WIDTH"
	case recXY:
		return "XY"
	case recENDEL:
		return "ENDEL"
	case recSNAME:
		return "SNAME"
	case recNODE:
		return "NODE"
	case recSTRANS:
		return "STRANS"
	case recMAG:
		return "MAG"
	case recANGLE:
		return "ANGLE"
	case recPATHTYPE:
		return "PATHTYPE"
	case recBOX:
		return "BOX"
	}
	return "UNKNOWN"
}
