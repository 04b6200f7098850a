package filter

import (
	"hash/crc32"
	"strconv"
)

const indexSep = ":"

// Indices 计算key对应的hashes个位下标，范围 [0, size)。
// 第i个下标为 crc32(key + ":" + (seed+i)) % size，同样的 seed/size/hashes 在任何进程中结果一致，
// 不同的i可能落在同一位上。
func Indices(key string, size int64, hashes int, seed int64) []int64 {
	if size <= 0 || hashes <= 0 {
		return nil
	}
	indices := make([]int64, hashes)
	buf := make([]byte, 0, len(key)+len(indexSep)+20)
	for i := 0; i < hashes; i++ {
		buf = append(buf[:0], key...)
		buf = append(buf, indexSep...)
		buf = strconv.AppendInt(buf, seed+int64(i), 10)
		indices[i] = int64(crc32.ChecksumIEEE(buf)) % size
	}
	return indices
}
