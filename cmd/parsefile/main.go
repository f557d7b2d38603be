package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"
)

// 命令行参数定义
var (
	filePath  = flag.String("file", "", "本地简历文件路径 (必填)")
	fileType  = flag.String("type", "", "文件类型 pdf/docx/txt，留空时按扩展名推断")
	prettyOut = flag.Bool("pretty", true, "JSON缩进输出")
)

// localFileFetcher 从本地磁盘读取文件，替代对象存储
type localFileFetcher struct {
	path string
}

func (f *localFileFetcher) Fetch(ctx context.Context, req *types.ParseRequest) (*types.RawDocument, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, types.WrapParseError(types.ErrKindSourceUnavailable, "读取本地文件失败", err)
	}
	return &types.RawDocument{
		Data:      data,
		FileType:  req.FileType,
		SourceKey: f.path,
	}, nil
}

func main() {
	flag.Parse()

	if *filePath == "" {
		fmt.Println("错误: 必须通过 -file 提供简历文件路径。")
		flag.Usage()
		os.Exit(1)
	}

	ft := strings.ToLower(*fileType)
	if ft == "" {
		ft = strings.TrimPrefix(strings.ToLower(filepath.Ext(*filePath)), ".")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	textExtractor, err := parser.NewDocumentExtractor(ctx)
	if err != nil {
		fmt.Printf("创建文本提取器失败: %v\n", err)
		os.Exit(1)
	}

	// 本地解析只走规则回退路径，不发起任何网络请求
	pipeline, err := processor.NewPipeline(&processor.Components{
		Fetcher:       &localFileFetcher{path: *filePath},
		TextExtractor: textExtractor,
		Fallback:      parser.NewRegexExtractor(),
	}, nil)
	if err != nil {
		fmt.Printf("创建解析流水线失败: %v\n", err)
		os.Exit(1)
	}

	req := &types.ParseRequest{
		UserID:   "local",
		ResumeID: filepath.Base(*filePath),
		S3Bucket: "local",
		S3Key:    *filePath,
		FileType: types.FileType(ft),
	}

	fmt.Printf("解析本地文件: %s (类型 %s)\n", *filePath, ft)
	start := time.Now()
	result := pipeline.Parse(ctx, req)
	fmt.Printf("解析完成，耗时: %v\n\n", time.Since(start))

	var out []byte
	if *prettyOut {
		out, err = json.MarshalIndent(result, "", "  ")
	} else {
		out, err = json.Marshal(result)
	}
	if err != nil {
		fmt.Printf("序列化结果失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if result.Status != types.StatusSuccess {
		os.Exit(2)
	}
}
