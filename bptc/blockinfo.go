package bptc

// GetBlockInfo decodes the header of a block: mode, partition, endpoints and indices.
//
// Reserved blocks return IsErrorBlock set and a nil error.
func GetBlockInfo(format Format, block [BlockBytes]byte) (BlockInfo, error) {
	info := BlockInfo{Format: format}
	switch format {
	case FormatBC7:
		c, ok := unpackBC7(&block)
		if !ok {
			info.IsErrorBlock = true
			return info, nil
		}
		m := &bc7Modes[c.mode]
		info.Mode = c.mode
		info.PartitionCount = m.subsets
		info.Partition = c.shape
		info.Rotation = c.rotation
		info.IndexMode = c.indexMode
		info.Indices = c.indices
		info.Indices2 = c.indices2
		info.PartitionAssignment = *partitionFor(m.subsets, c.shape)
		eps := c.decodedEndpoints()
		for s := 0; s < m.subsets; s++ {
			for e := 0; e < 2; e++ {
				ep := rotate(eps[s][e], c.rotation)
				for ch := 0; ch < 4; ch++ {
					info.Endpoints[s][e][ch] = float32(ep[ch])
				}
			}
		}
		return info, nil

	case FormatBC6HUF16, FormatBC6HSF16:
		signed := format.Signed()
		c, ok := unpackBC6H(&block, signed)
		if !ok {
			info.IsErrorBlock = true
			return info, nil
		}
		m := &bc6hModes[c.mode]
		info.Mode = m.number
		info.PartitionCount = m.regions
		info.Partition = c.shape
		info.Indices = c.indices
		info.PartitionAssignment = *partitionFor(m.regions, c.shape)
		for s := 0; s < m.regions; s++ {
			for e := 0; e < 2; e++ {
				for ch := 0; ch < 3; ch++ {
					v := finishUnquantize(unquantize(c.endpoints[s][e][ch], m.endpointBits, signed), signed)
					info.Endpoints[s][e][ch] = HalfToFloat32(intToHalf(v))
				}
				info.Endpoints[s][e][3] = 1
			}
		}
		return info, nil

	default:
		return info, newError(ErrBadFormat, "bptc: invalid format")
	}
}
