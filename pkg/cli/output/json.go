// Package output 命令行输出：彩色提示、表格和JSON。
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// out 所有输出的目标，默认为支持颜色的标准输出
var out io.Writer = color.Output

// SetOutput 替换输出目标，返回恢复函数（测试中捕获输出）
func SetOutput(w io.Writer) (restore func()) {
	prev := out
	out = w
	return func() { out = prev }
}

// Writer 当前输出目标
func Writer() io.Writer {
	return out
}

// PrintJSON 输出JSON格式
func PrintJSON(data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Success 输出成功消息
func Success(format string, args ...interface{}) {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintf(out, "✅ "+format+"\n", args...)
}

// Error 输出错误消息
func Error(format string, args ...interface{}) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(out, "❌ "+format+"\n", args...)
}

// Info 输出信息
func Info(format string, args ...interface{}) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(out, "ℹ️  "+format+"\n", args...)
}

// Warning 输出警告
func Warning(format string, args ...interface{}) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(out, "⚠️  "+format+"\n", args...)
}

// Printf 普通输出
func Printf(format string, args ...interface{}) {
	fmt.Fprintf(out, format, args...)
}
