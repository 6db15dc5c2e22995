package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// 订阅 /entries/stream，打印收到的每个事件
func main() {
	base := flag.String("addr", "http://localhost:8080", "服务地址")
	token := flag.String("token", os.Getenv("KINDKEEPER_TOKEN"), "登录后拿到的 JWT")
	flag.Parse()
	if *token == "" {
		fmt.Println("请通过 -token 或环境变量 KINDKEEPER_TOKEN 提供 JWT")
		os.Exit(1)
	}

	// EventSource 无法设置 Header，这里也走 query 参数
	endpoint := *base + "/api/v1/entries/stream?token=" + url.QueryEscape(*token)
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		fmt.Println("构造请求失败:", err)
		os.Exit(1)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("请求失败:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Println("连接被拒绝:", resp.Status)
		os.Exit(1)
	}

	fmt.Println("连接建立，等待新记录...")

	var event string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if event == "ping" {
				continue
			}
			fmt.Printf("[%s] %s\n", event, data)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Println("读取流错误:", err)
	}
}
