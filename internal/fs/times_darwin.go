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
	md.ATime = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	md.CTime = time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec)
	md.BTime = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
}
