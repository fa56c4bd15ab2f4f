package domain

// VideoFile 描述视频目录下的一个视频文件（只看文件名，不读内容）。
//
// 不变量：
// - Name 是目录内的文件名（不含目录部分）
// - Ext 统一为小写且带前导 '.'
type VideoFile struct {
	Name string // "cat.mp4"
	Stem string // "cat"
	Ext  string // ".mp4"
}
