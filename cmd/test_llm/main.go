package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/leon37/KindKeeper/internal/config"
	"github.com/leon37/KindKeeper/internal/infrastructure/llm"
	"github.com/leon37/KindKeeper/internal/model"
)

// 手动试跑意图解析：go run ./cmd/test_llm -text "..."
func main() {
	text := flag.String("text", "", "只跑这一句，不跑内置用例")
	flag.Parse()

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	if conf.OpenAI.APIKey == "" {
		log.Fatal("请设置 openai.api_key 或环境变量 KINDKEEPER_OPENAI_API_KEY")
	}
	client := llm.NewIntentClient(conf.OpenAI)

	testCases := []struct {
		Name  string
		Input string
	}{
		{Name: "场景1：单笔支出", Input: "I spent 1500 rupees on groceries today"},
		{Name: "场景2：保姆出勤", Input: "Lakshmi came to work today"},
		{Name: "场景3：提醒", Input: "Remind me to pay the electricity bill on the 5th"},
		{Name: "场景4：一句多笔", Input: "Got my pension of 25000 and paid 800 for medicines"},
		{Name: "场景5：闲聊", Input: "Good morning, how are you?"},
	}
	if *text != "" {
		testCases = testCases[:0]
		testCases = append(testCases, struct {
			Name  string
			Input string
		}{Name: "命令行输入", Input: *text})
	}

	ctx := context.Background()
	for _, tc := range testCases {
		fmt.Printf("\n-------- 测试: %s --------\n", tc.Name)
		fmt.Printf("输入: %s\n", tc.Input)

		start := time.Now()
		intent, err := client.Interpret(ctx, tc.Input)
		duration := time.Since(start)
		if err != nil {
			log.Printf("调用失败: %v\n", err)
			continue
		}

		fmt.Printf("调用成功 (耗时 %v)\n", duration)
		fmt.Printf("回复: %s\n", intent.Reply)
		for i, raw := range intent.Operations {
			fmt.Printf("操作 %d: %s %s %s\n", i+1, raw.Operation, raw.Table, string(raw.Data))
			if _, err := model.DecodeOperation(raw); err != nil {
				fmt.Printf("  └── 无法落库: %v\n", err)
			}
		}
	}
}
