package vitals

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadLogKey logs key 无法解析为时间
var ErrBadLogKey = errors.New("bad log key")

// logs key 编码（v1）：ISO-8601 本地时间，':' 和 '.' 替换为 '_'
//   2025-05-10T01:39:11.869684 -> 2025-05-10T01_39_11_869684
// 与设备端 server 写入 logs/<key> 时的格式一致。
const (
	keyLayout      = "2006-01-02T15:04:05.000000"
	localLayout    = "2006-01-02T15:04:05.999999999"
	clockFieldsLen = len("15_04_05")
)

// EncodeLogKey 将时间编码为 logs key（按 key 排序即按时间排序）
func EncodeLogKey(t time.Time) string {
	s := t.Format(keyLayout)
	return strings.NewReplacer(":", "_", ".", "_").Replace(s)
}

// ParseLogKey 还原 logs key 中的时间；无时区后缀的 key 按 loc 解释
func ParseLogKey(key string, loc *time.Location) (time.Time, error) {
	date, clock, ok := strings.Cut(key, "T")
	if !ok || len(clock) < clockFieldsLen || clock[2] != '_' || clock[5] != '_' {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadLogKey, key)
	}
	if loc == nil {
		loc = time.Local
	}

	rest := clock[clockFieldsLen:]
	if strings.HasPrefix(rest, "_") {
		rest = "." + rest[1:]
	}
	rest = strings.ReplaceAll(rest, "_", ":")
	s := date + "T" + clock[0:2] + ":" + clock[3:5] + ":" + clock[6:8] + rest

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrBadLogKey, key, err)
	}
	return t, nil
}
