package fs

import (
	"os"
	"syscall"
	"time"
)

func fillTimes(md *Metadata, info os.FileInfo) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		md.ATime = md.MTime
		md.CTime = md.MTime
		md.BTime = md.MTime
		return
	}
	md.ATime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	md.CTime = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	// Linux stat carries no birth time; ctime is the closest stand-in.
	md.BTime = md.CTime
}
