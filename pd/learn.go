package pd

import (
	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/internal/help"
	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/schema"
)

// ExtractLearnQuanta reads learn_quanta. A field split over several PHV
// containers shows up once per slice; slices after the first add their width
// to the first.
func ExtractLearnQuanta(root schema.Node, prefix string) ([]*LearnQuantaInfo, error) {
	l := logger.Named("learn_quanta")
	lqs, err := root.OptList("learn_quanta")
	if err != nil {
		return nil, err
	}
	out := make([]*LearnQuantaInfo, 0, len(lqs))
	for _, lq := range lqs {
		name, err := lq.Str("name")
		if err != nil {
			return nil, err
		}
		handle, err := lq.OptInt("handle", 0)
		if err != nil {
			return nil, err
		}
		fields, err := lq.List("fields")
		if err != nil {
			return nil, err
		}

		info := newLearnQuanta(prefix, name)
		info.Handle = handle
		pos := make(map[string]int)
		for _, f := range fields {
			fname, err := f.Str("field_name")
			if err != nil {
				return nil, err
			}
			width, err := f.Int("field_width")
			if err != nil {
				return nil, err
			}
			if i, ok := pos[fname]; ok {
				info.Fields[i].BitWidth += width
				continue
			}
			pos[fname] = len(info.Fields)
			info.Fields = append(info.Fields, LearnField{Name: fname, BitWidth: width})
		}
		for i := range info.Fields {
			info.Fields[i].ByteWidth = help.ByteWidth(info.Fields[i].BitWidth)
		}
		l.Debug("learn_quanta", zap.String("name", name), zap.Int("fields", len(info.Fields)))
		out = append(out, info)
	}
	return out, nil
}

func newLearnQuanta(prefix, name string) *LearnQuantaInfo {
	base := "p4_pd_" + prefix + "_" + Normalize(name)
	return &LearnQuantaInfo{
		Name:           name,
		DigestNotifyCB: base + "_digest_notify_cb",
		NotifyAck:      base + "_notify_ack",
		DigestMsgT:     base + "_digest_msg_t",
		Deregister:     base + "_deregister",
		Register:       base + "_register",
		DigestEntryT:   base + "_digest_entry_t",
	}
}
